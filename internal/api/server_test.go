package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRegistry struct {
	owners map[string]string
}

func (s *stubRegistry) key(contract string, tokenId uint64) string {
	return fmt.Sprintf("%s-%d", contract, tokenId)
}

func (s *stubRegistry) OwnerOf(contract string, tokenId uint64) (string, error) {
	return s.owners[s.key(contract, tokenId)], nil
}

func (s *stubRegistry) CreatorOf(contract string, tokenId uint64) (string, error) {
	return s.owners[s.key(contract, tokenId)], nil
}

func (s *stubRegistry) Exists(contract string, tokenId uint64) (bool, error) {
	_, ok := s.owners[s.key(contract, tokenId)]
	return ok, nil
}

func (s *stubRegistry) IsApproved(contract string, tokenId uint64, operator string) (bool, error) {
	return true, nil
}

func (s *stubRegistry) Transfer(contract string, tokenId, quantity uint64, from, to string) error {
	s.owners[s.key(contract, tokenId)] = to
	return nil
}

func (s *stubRegistry) Mint(contract, to string, quantity uint64, uri string) (uint64, error) {
	tokenId := uint64(len(s.owners) + 1)
	s.owners[s.key(contract, tokenId)] = to
	return tokenId, nil
}

type stubFunds struct{}

func (stubFunds) Token() string { return "WETH" }

func (stubFunds) BalanceOf(account string) (*big.Int, error) {
	return big.NewInt(1000000), nil
}

func (stubFunds) Allowance(owner, spender string) (*big.Int, error) {
	return big.NewInt(1000000), nil
}

func (stubFunds) TransferFrom(from, to string, amount *big.Int) error { return nil }

func (stubFunds) Transfer(to string, amount *big.Int) error { return nil }

type stubListingRepo struct{}

func (stubListingRepo) GetListing(listingId uint64) (entity.Listing, error) {
	return entity.Listing{}, nil
}

func (stubListingRepo) GetListingsBySeller(seller string, size, page int) ([]entity.Listing, int64, error) {
	return nil, 0, nil
}

func (stubListingRepo) GetOpenListings(size, page int) ([]entity.Listing, int64, error) {
	return []entity.Listing{{Id: 1}}, 1, nil
}

type stubActionRepo struct{}

func (stubActionRepo) GetActions(listingId uint64, size, page int) ([]entity.MarketAction, int64, error) {
	return nil, 0, nil
}

func (stubActionRepo) GetSales(tokenAddress string, size, page int) ([]entity.MarketAction, int64, error) {
	return nil, 0, nil
}

func (stubActionRepo) GetLatestSale(tokenAddress string, tokenId uint64) (*entity.MarketAction, error) {
	return nil, nil
}

func newTestServer(t *testing.T) (Server, *stubRegistry) {
	registry := &stubRegistry{owners: map[string]string{"0xnft-1": "0xseller"}}

	marketplace := market.NewMarketplace()
	licenses := market.NewLicenseLedger(2592000)
	require.NoError(t, marketplace.Initialize(registry, stubFunds{}, licenses, nil, "0xtreasury"))

	issuer := market.NewIssuer(marketplace.Roles(), registry)

	return NewServer(marketplace, issuer, stubListingRepo{}, stubActionRepo{}), registry
}

func do(t *testing.T, server Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	return rec
}

func TestServer_ListAndBuy(t *testing.T) {
	server, registry := newTestServer(t)

	rec := do(t, server, "POST", "/listings/fixed", listingRequest{
		Asset: entity.Asset{
			AssetType:    entity.SingleEditionAsset,
			Seller:       "0xseller",
			TokenAddress: "0xnft",
			TokenId:      1,
			Quantity:     1,
			Price:        big.NewInt(1000),
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var created listingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, uint64(1), created.ListingId)

	rec = do(t, server, "GET", "/listings/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, "POST", "/listings/1/buy", buyRequest{Buyer: "0xbuyer"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0xbuyer", registry.owners["0xnft-1"])

	// A second purchase conflicts.
	rec = do(t, server, "POST", "/listings/1/buy", buyRequest{Buyer: "0xother"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_InvalidListingRejected(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, "POST", "/listings/fixed", listingRequest{
		Asset: entity.Asset{Seller: "0xseller", TokenAddress: "0xnft", TokenId: 1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UnknownListing(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, "POST", "/listings/99/buy", buyRequest{Buyer: "0xbuyer"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, server, "GET", "/listings/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Roles(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, "POST", "/roles/grant", roleRequest{Role: entity.MinterRole, Account: "0xminter"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, "GET", "/roles/MINTER_ROLE/0xminter", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var hasRole map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&hasRole))
	assert.True(t, hasRole["hasRole"])

	rec = do(t, server, "POST", "/roles/revoke", roleRequest{Role: entity.MinterRole, Account: "0xminter"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, "GET", "/roles/MINTER_ROLE/0xminter", nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&hasRole))
	assert.False(t, hasRole["hasRole"])
}

func TestServer_Licenses(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, "POST", "/licenses", licenseRequest{
		Collection: "0xnft",
		TokenId:    1,
		TermUnits:  1,
		Licensee:   "0xlicensee",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, "GET", "/licenses/0xnft/1/0xlicensee", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var licensed map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&licensed))
	assert.True(t, licensed["licensed"])

	// Unknown token is rejected.
	rec = do(t, server, "POST", "/licenses", licenseRequest{Collection: "0xnft", TokenId: 99, TermUnits: 1, Licensee: "0xlicensee"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateAssetRequiresMinter(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, "POST", "/assets", createAssetRequest{
		Caller:     "0xnobody",
		Collection: "0xnft",
		Recipient:  "0xowner",
		Quantity:   1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	do(t, server, "POST", "/roles/grant", roleRequest{Role: entity.MinterRole, Account: "0xminter"})

	rec = do(t, server, "POST", "/assets", createAssetRequest{
		Caller:     "0xminter",
		Collection: "0xnft",
		Recipient:  "0xowner",
		Quantity:   1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_OpenListings(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, "GET", "/listings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, float64(1), body["total"])
}

func TestServer_Escrow(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, "POST", "/escrow/deposit", map[string]interface{}{
		"account": "0xbuyer",
		"amount":  big.NewInt(500),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, "GET", "/escrow/0xbuyer", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "500", body["credit"])

	rec = do(t, server, "POST", "/escrow/withdraw", map[string]interface{}{
		"account": "0xbuyer",
		"amount":  big.NewInt(500),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, "GET", "/escrow/0xbuyer", nil)
	var after map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&after))
	assert.Equal(t, "0", after["credit"])
}
