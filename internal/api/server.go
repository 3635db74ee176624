package api

import (
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/market"
	"github.com/mintlane/marketplace-engine/internal/repository"
	"go.uber.org/zap"
	"math/big"
	"net/http"
	"strconv"
)

type Server struct {
	marketplace *market.Marketplace
	issuer      market.Issuer
	listingRepo repository.ListingRepository
	actionRepo  repository.MarketActionRepository
}

func NewServer(
	marketplace *market.Marketplace,
	issuer market.Issuer,
	listingRepo repository.ListingRepository,
	actionRepo repository.MarketActionRepository,
) Server {
	return Server{marketplace, issuer, listingRepo, actionRepo}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")

	r.HandleFunc("/listings/fixed", s.handleAddFixedSale).Methods("POST")
	r.HandleFunc("/listings/dutch", s.handleAddDutchAuction).Methods("POST")
	r.HandleFunc("/listings/english", s.handleAddEnglishAuction).Methods("POST")
	r.HandleFunc("/listings", s.handleGetOpenListings).Methods("GET")
	r.HandleFunc("/listings/{listingId}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listings/{listingId}/actions", s.handleGetActions).Methods("GET")
	r.HandleFunc("/listings/{listingId}/buy", s.handleBuy).Methods("POST")
	r.HandleFunc("/listings/{listingId}/bid", s.handleBid).Methods("POST")
	r.HandleFunc("/listings/{listingId}/start", s.handleStartAuction).Methods("POST")
	r.HandleFunc("/listings/{listingId}/pause", s.handlePauseSale).Methods("POST")
	r.HandleFunc("/listings/{listingId}/unpause", s.handleUnpauseSale).Methods("POST")
	r.HandleFunc("/listings/{listingId}/end", s.handleEndAuction).Methods("POST")
	r.HandleFunc("/listings/{listingId}/cancel", s.handleCancelListing).Methods("POST")

	r.HandleFunc("/licenses", s.handleGrantLicense).Methods("POST")
	r.HandleFunc("/licenses/{collection}/{tokenId}/{account}", s.handleIsLicensed).Methods("GET")

	r.HandleFunc("/roles/grant", s.handleGrantRole).Methods("POST")
	r.HandleFunc("/roles/revoke", s.handleRevokeRole).Methods("POST")
	r.HandleFunc("/roles/{role}/{account}", s.handleHasRole).Methods("GET")

	r.HandleFunc("/escrow/deposit", s.handleEscrowDeposit).Methods("POST")
	r.HandleFunc("/escrow/withdraw", s.handleEscrowWithdraw).Methods("POST")
	r.HandleFunc("/escrow/{account}", s.handleEscrowBalance).Methods("GET")

	r.HandleFunc("/assets", s.handleCreateAsset).Methods("POST")

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "Marketplace Engine")
}

type listingRequest struct {
	Asset     entity.Asset `json:"asset"`
	IsAuction bool         `json:"isAuction"`
	Uri       string       `json:"uri"`

	Dutch *entity.DutchParams `json:"dutch,omitempty"`

	ReservePrice *big.Int `json:"reservePrice,omitempty"`
	Duration     int64    `json:"duration,omitempty"`
}

type listingResponse struct {
	ListingId uint64 `json:"listingId"`
}

func (s Server) handleAddFixedSale(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	listingId, err := s.marketplace.Store().AddAssetForFixedSale(req.Asset, req.IsAuction, req.Uri)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, listingResponse{listingId})
}

func (s Server) handleAddDutchAuction(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Dutch == nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	listingId, err := s.marketplace.Store().AddAssetForDutchAuction(req.Asset, *req.Dutch, req.IsAuction, req.Uri)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, listingResponse{listingId})
}

func (s Server) handleAddEnglishAuction(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	listingId, err := s.marketplace.Store().AddAssetForEnglishAuction(req.Asset, req.ReservePrice, req.Duration, req.IsAuction, req.Uri)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, listingResponse{listingId})
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listingId, err := getListingId(r)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	listing, err := s.marketplace.Store().Get(listingId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, listing)
}

func (s Server) handleGetOpenListings(w http.ResponseWriter, r *http.Request) {
	size, page := pagination(r)

	listings, total, err := s.listingRepo.GetOpenListings(size, page)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Open listings not available")
		http.Error(w, "Listings not available", http.StatusInternalServerError)
		return
	}

	writeJson(w, map[string]interface{}{"listings": listings, "total": total})
}

func (s Server) handleGetActions(w http.ResponseWriter, r *http.Request) {
	listingId, err := getListingId(r)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}
	size, page := pagination(r)

	actions, total, err := s.actionRepo.GetActions(listingId, size, page)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Actions not available")
		http.Error(w, "Actions not available", http.StatusInternalServerError)
		return
	}

	writeJson(w, map[string]interface{}{"actions": actions, "total": total})
}

type buyRequest struct {
	Buyer            string `json:"buyer"`
	UseEscrowBalance bool   `json:"useEscrowBalance"`
}

func (s Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	listingId, err := getListingId(r)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.Engine().Buy(listingId, req.Buyer, req.UseEscrowBalance); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type bidRequest struct {
	Bidder string   `json:"bidder"`
	Amount *big.Int `json:"amount"`
}

func (s Server) handleBid(w http.ResponseWriter, r *http.Request) {
	listingId, err := getListingId(r)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.Engine().Bid(listingId, req.Bidder, req.Amount); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type callerRequest struct {
	Caller string `json:"caller"`
}

func (s Server) handleStartAuction(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.marketplace.Engine().StartAuction)
}

func (s Server) handlePauseSale(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.marketplace.Engine().PauseSale)
}

func (s Server) handleUnpauseSale(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.marketplace.Engine().UnpauseSale)
}

func (s Server) handleEndAuction(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.marketplace.Engine().EndAuction)
}

func (s Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.marketplace.Engine().CancelListing)
}

func (s Server) handleTransition(w http.ResponseWriter, r *http.Request, transition func(uint64, string) error) {
	listingId, err := getListingId(r)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := transition(listingId, req.Caller); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type licenseRequest struct {
	Collection string `json:"collection"`
	TokenId    uint64 `json:"tokenId"`
	TermUnits  uint64 `json:"termUnits"`
	Licensee   string `json:"licensee"`
}

func (s Server) handleGrantLicense(w http.ResponseWriter, r *http.Request) {
	var req licenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	licenseId, err := s.marketplace.Licenses().GrantLicense(req.Collection, req.TokenId, req.TermUnits, req.Licensee)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, map[string]string{"licenseId": licenseId})
}

func (s Server) handleIsLicensed(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	account := mux.Vars(r)["account"]
	tokenId, err := strconv.ParseUint(mux.Vars(r)["tokenId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	writeJson(w, map[string]bool{"licensed": s.marketplace.Licenses().IsLicensed(collection, tokenId, account)})
}

type escrowRequest struct {
	Account string   `json:"account"`
	Amount  *big.Int `json:"amount"`
}

func (s Server) handleEscrowDeposit(w http.ResponseWriter, r *http.Request) {
	var req escrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.Engine().Deposit(req.Account, req.Amount); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s Server) handleEscrowWithdraw(w http.ResponseWriter, r *http.Request) {
	var req escrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := s.marketplace.Engine().Withdraw(req.Account, req.Amount); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s Server) handleEscrowBalance(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]

	writeJson(w, map[string]string{
		"account": account,
		"credit":  s.marketplace.Engine().EscrowBalance(account).String(),
	})
}

type roleRequest struct {
	Role    entity.Role `json:"role"`
	Account string      `json:"account"`
}

func (s Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s.marketplace.Roles().GrantRole(req.Role, req.Account)
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s.marketplace.Roles().RevokeRole(req.Role, req.Account)
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleHasRole(w http.ResponseWriter, r *http.Request) {
	role := entity.Role(mux.Vars(r)["role"])
	account := mux.Vars(r)["account"]

	writeJson(w, map[string]bool{"hasRole": s.marketplace.Roles().HasRole(role, account)})
}

type createAssetRequest struct {
	Caller     string `json:"caller"`
	Collection string `json:"collection"`
	Recipient  string `json:"recipient"`
	Quantity   uint64 `json:"quantity"`
	Uri        string `json:"uri"`
}

func (s Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	tokenId, err := s.issuer.Create(req.Caller, req.Collection, req.Recipient, req.Quantity, req.Uri)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, map[string]uint64{"tokenId": tokenId})
}

func getListingId(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["listingId"], 10, 64)
}

func pagination(r *http.Request) (int, int) {
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 {
		size = 20
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	return size, page
}

func writeJson(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch err {
	case market.ErrListingNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case market.ErrInvalidAsset:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case market.ErrUnauthorized:
		http.Error(w, err.Error(), http.StatusForbidden)
	case market.ErrInsufficientFunds, market.ErrBidTooLow:
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case market.ErrInvalidTransition, market.ErrNotForSale, market.ErrAlreadySettled, market.ErrAlreadyInitialized:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		zap.L().With(zap.Error(err)).Error("Unhandled marketplace error")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
