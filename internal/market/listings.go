package market

import (
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/registry"
	"go.uber.org/zap"
	"math/big"
	"sync"
	"time"
)

// Store holds one record per listed asset and owns listing creation. Each
// listing carries its own lock; transitions against different listings never
// block each other.
type Store struct {
	registry   registry.Service
	roles      *Roles
	recorder   Recorder
	operator   string
	nowFn      func() int64

	mu     sync.RWMutex
	nextId uint64
	slots  map[uint64]*slot
}

type slot struct {
	mu      sync.Mutex
	listing entity.Listing
}

func NewStore(registry registry.Service, roles *Roles, recorder Recorder, operator string) *Store {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &Store{
		registry: registry,
		roles:    roles,
		recorder: recorder,
		operator: operator,
		nowFn:    func() int64 { return time.Now().Unix() },
		nextId:   1,
		slots:    make(map[uint64]*slot),
	}
}

// SetNowFunc overrides the time source, primarily used in tests.
func (s *Store) SetNowFunc(now func() int64) {
	if now != nil {
		s.nowFn = now
	}
}

func (s *Store) AddAssetForFixedSale(asset entity.Asset, isAuction bool, uri string) (uint64, error) {
	listing, err := s.newListing(asset, isAuction, uri)
	if err != nil {
		return 0, err
	}

	listing.SaleMode = entity.FixedSale

	return s.add(listing)
}

func (s *Store) AddAssetForDutchAuction(asset entity.Asset, dutch entity.DutchParams, isAuction bool, uri string) (uint64, error) {
	listing, err := s.newListing(asset, isAuction, uri)
	if err != nil {
		return 0, err
	}

	if dutch.StartingPrice == nil || dutch.StartingPrice.Cmp(asset.Price) < 0 {
		return 0, ErrInvalidAsset
	}
	if dutch.ExpiresAt <= dutch.StartAt {
		return 0, ErrInvalidAsset
	}
	if dutch.DiscountRate == nil || dutch.DiscountRate.Sign() <= 0 {
		return 0, ErrInvalidAsset
	}

	listing.SaleMode = entity.DutchAuction
	listing.Dutch = &dutch

	return s.add(listing)
}

func (s *Store) AddAssetForEnglishAuction(asset entity.Asset, reservePrice *big.Int, duration int64, isAuction bool, uri string) (uint64, error) {
	listing, err := s.newListing(asset, isAuction, uri)
	if err != nil {
		return 0, err
	}

	if reservePrice == nil || reservePrice.Sign() <= 0 || duration <= 0 {
		return 0, ErrInvalidAsset
	}

	listing.SaleMode = entity.EnglishAuction
	listing.English = &entity.EnglishState{
		ReservePrice: reservePrice,
		Duration:     duration,
	}

	return s.add(listing)
}

func (s *Store) newListing(asset entity.Asset, isAuction bool, uri string) (entity.Listing, error) {
	if asset.Quantity < 1 {
		return entity.Listing{}, ErrInvalidAsset
	}
	if asset.Price == nil || asset.Price.Sign() <= 0 {
		return entity.Listing{}, ErrInvalidAsset
	}
	if len(asset.Stakeholders) != len(asset.RoyaltySplit) {
		return entity.Listing{}, ErrInvalidAsset
	}

	var splitTotal uint
	for _, share := range asset.RoyaltySplit {
		splitTotal += share
	}
	if splitTotal > 10000 {
		return entity.Listing{}, ErrInvalidAsset
	}

	// Ownership certificates are restricted instruments. Only governors may
	// put them on the market.
	if asset.AssetType == entity.CertificateAsset && !s.roles.HasRole(entity.GovernorRole, asset.Seller) {
		return entity.Listing{}, ErrUnauthorized
	}

	// The asset is escrowed by approval: the seller must have approved the
	// marketplace operator before listing.
	approved, err := s.registry.IsApproved(asset.TokenAddress, asset.TokenId, s.operator)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("tokenAddress", asset.TokenAddress)).Error("Store: approval check failed")
		return entity.Listing{}, err
	}
	if !approved {
		return entity.Listing{}, ErrInvalidAsset
	}

	return entity.Listing{
		AssetType:    asset.AssetType,
		Seller:       asset.Seller,
		Creator:      asset.Creator,
		TokenAddress: asset.TokenAddress,
		TokenId:      asset.TokenId,
		Quantity:     asset.Quantity,
		Price:        asset.Price,
		Uri:          uri,
		Stakeholders: asset.Stakeholders,
		RoyaltySplit: asset.RoyaltySplit,
		State:        entity.ListingListed,
		IsAuction:    isAuction,
		CreatedAt:    s.nowFn(),
	}, nil
}

func (s *Store) add(listing entity.Listing) (uint64, error) {
	s.mu.Lock()
	listing.Id = s.nextId
	s.nextId++
	s.slots[listing.Id] = &slot{listing: listing}
	s.mu.Unlock()

	s.recorder.Listing(listing)
	s.recorder.Action(entity.MarketAction{
		ListingId:    listing.Id,
		TokenAddress: listing.TokenAddress,
		TokenId:      listing.TokenId,
		Action:       entity.ListedAction,
		SaleMode:     listing.SaleMode,
		From:         listing.Seller,
		Cost:         listing.Price.String(),
		Timestamp:    listing.CreatedAt,
	})

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.String("saleMode", string(listing.SaleMode)),
		zap.String("seller", listing.Seller),
		zap.String("tokenAddress", listing.TokenAddress),
		zap.Uint64("tokenId", listing.TokenId),
		zap.String("price", listing.Price.String()),
	).Info("Asset listed")

	return listing.Id, nil
}

// Get returns a copy of the listing.
func (s *Store) Get(listingId uint64) (entity.Listing, error) {
	s.mu.RLock()
	sl, ok := s.slots[listingId]
	s.mu.RUnlock()

	if !ok {
		return entity.Listing{}, ErrListingNotFound
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	return sl.listing, nil
}

// Ids returns the ids of all known listings, in no particular order.
func (s *Store) Ids() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint64, 0, len(s.slots))
	for id := range s.slots {
		ids = append(ids, id)
	}

	return ids
}

// withListing runs fn with the listing's lock held. The listing is only
// written back when fn returns nil; a failed operation leaves the stored
// state untouched.
func (s *Store) withListing(listingId uint64, fn func(listing *entity.Listing) error) error {
	s.mu.RLock()
	sl, ok := s.slots[listingId]
	s.mu.RUnlock()

	if !ok {
		return ErrListingNotFound
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	candidate := sl.listing
	if candidate.English != nil {
		englishCopy := *sl.listing.English
		candidate.English = &englishCopy
	}
	if candidate.Dutch != nil {
		dutchCopy := *sl.listing.Dutch
		candidate.Dutch = &dutchCopy
	}

	if err := fn(&candidate); err != nil {
		return err
	}

	sl.listing = candidate
	s.recorder.Listing(candidate)

	return nil
}
