package market

import (
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/event"
	"github.com/mintlane/marketplace-engine/internal/funds"
	"go.uber.org/zap"
	"math/big"
	"sync"
	"time"
)

// Engine runs the three sale-mode state machines over listings. Every
// transition happens with the listing's lock held, and time is read once per
// operation so all comparisons within a call see the same instant.
type Engine struct {
	store      *Store
	funds      funds.Service
	roles      *Roles
	settlement *Distributor
	recorder   Recorder
	operator   string
	nowFn      func() int64

	creditMu sync.Mutex
	credits  map[string]*big.Int
}

func NewEngine(store *Store, funds funds.Service, roles *Roles, settlement *Distributor, recorder Recorder, operator string) *Engine {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &Engine{
		store:      store,
		funds:      funds,
		roles:      roles,
		settlement: settlement,
		recorder:   recorder,
		operator:   operator,
		nowFn:      func() int64 { return time.Now().Unix() },
		credits:    make(map[string]*big.Int),
	}
}

// SetNowFunc overrides the time source, primarily used in tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now != nil {
		e.nowFn = now
	}
}

// Buy purchases a fixed-sale listing at its price or a Dutch listing at the
// current discounted price. With useEscrowBalance the buyer's escrow credit
// held by the marketplace is drawn before the funds ledger.
func (e *Engine) Buy(listingId uint64, buyer string, useEscrowBalance bool) error {
	now := e.nowFn()

	return e.store.withListing(listingId, func(listing *entity.Listing) error {
		if listing.SaleMode != entity.FixedSale && listing.SaleMode != entity.DutchAuction {
			return ErrNotForSale
		}
		if listing.State == entity.ListingSold {
			return ErrAlreadySettled
		}
		if listing.State != entity.ListingListed && listing.State != entity.ListingActive {
			return ErrNotForSale
		}

		price := listing.Price
		if listing.SaleMode == entity.DutchAuction {
			if now < listing.Dutch.StartAt || now > listing.Dutch.ExpiresAt {
				return ErrNotForSale
			}
			price = listing.DutchPrice(now)
		}

		collect := new(big.Int).Set(price)
		creditUsed := new(big.Int)
		if useEscrowBalance {
			creditUsed = e.reserveCredit(buyer, price)
			collect.Sub(price, creditUsed)
		}

		if collect.Sign() > 0 {
			if err := e.checkFunds(buyer, collect); err != nil {
				e.releaseCredit(buyer, creditUsed)
				return err
			}
			if err := e.funds.TransferFrom(buyer, e.operator, collect); err != nil {
				e.releaseCredit(buyer, creditUsed)
				return err
			}
		}

		if err := e.settlement.Settle(listing, price, buyer, now); err != nil {
			e.releaseCredit(buyer, creditUsed)
			e.returnCollected(buyer, collect)
			return err
		}

		return nil
	})
}

// returnCollected sends funds pulled for a settlement that subsequently
// failed back to the buyer. When the ledger also refuses the refund the
// amount is held as escrow credit so the value is never stranded.
func (e *Engine) returnCollected(account string, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	if err := e.funds.Transfer(account, amount); err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("account", account),
			zap.String("amount", amount.String()),
		).Error("Buy: failed to return collected funds, holding as escrow credit")
		e.releaseCredit(account, amount)
	}
}

// Bid places an English-auction bid. The previous highest bidder's escrowed
// amount is refunded in the same critical section as the bid update.
func (e *Engine) Bid(listingId uint64, bidder string, amount *big.Int) error {
	now := e.nowFn()

	return e.store.withListing(listingId, func(listing *entity.Listing) error {
		if listing.SaleMode != entity.EnglishAuction {
			return ErrInvalidTransition
		}
		if listing.State == entity.ListingSold {
			return ErrAlreadySettled
		}
		if listing.State != entity.ListingActive || now > listing.English.AuctionEnd {
			return ErrInvalidTransition
		}

		if listing.English.HighestBid == nil {
			if amount.Cmp(listing.English.ReservePrice) < 0 {
				return ErrBidTooLow
			}
		} else if amount.Cmp(listing.English.HighestBid) <= 0 {
			return ErrBidTooLow
		}

		if err := e.checkFunds(bidder, amount); err != nil {
			return err
		}
		if err := e.funds.TransferFrom(bidder, e.operator, amount); err != nil {
			return err
		}

		if listing.English.HighestBidder != "" {
			if err := e.funds.Transfer(listing.English.HighestBidder, listing.English.HighestBid); err != nil {
				// Undo the pull so a failed refund rejects the whole bid.
				if undoErr := e.funds.Transfer(bidder, amount); undoErr != nil {
					zap.L().With(zap.Error(undoErr), zap.Uint64("listingId", listing.Id)).Error("Bid: failed to return funds after refund failure")
				}
				return err
			}

			e.recorder.Action(entity.MarketAction{
				ListingId:    listing.Id,
				TokenAddress: listing.TokenAddress,
				TokenId:      listing.TokenId,
				Action:       entity.BidRefundAction,
				SaleMode:     listing.SaleMode,
				To:           listing.English.HighestBidder,
				Cost:         listing.English.HighestBid.String(),
				Fungible:     e.funds.Token(),
				Timestamp:    now,
			})
			event.NotifyListing(event.BidRefunded, *listing)
		}

		listing.English.HighestBid = new(big.Int).Set(amount)
		listing.English.HighestBidder = bidder

		e.recorder.Action(entity.MarketAction{
			ListingId:    listing.Id,
			TokenAddress: listing.TokenAddress,
			TokenId:      listing.TokenId,
			Action:       entity.BidAction,
			SaleMode:     listing.SaleMode,
			From:         bidder,
			Cost:         amount.String(),
			Fungible:     e.funds.Token(),
			Timestamp:    now,
		})
		event.NotifyListing(event.BidPlaced, *listing)

		zap.L().With(
			zap.Uint64("listingId", listing.Id),
			zap.String("bidder", bidder),
			zap.String("amount", amount.String()),
		).Info("Bid accepted")

		return nil
	})
}

// StartAuction moves an English listing from Listed to Active and fixes the
// auction end time.
func (e *Engine) StartAuction(listingId uint64, caller string) error {
	now := e.nowFn()

	return e.store.withListing(listingId, func(listing *entity.Listing) error {
		if listing.SaleMode != entity.EnglishAuction {
			return ErrInvalidTransition
		}
		if caller != listing.Seller && !e.roles.HasRole(entity.GovernorRole, caller) {
			return ErrUnauthorized
		}
		if listing.State != entity.ListingListed {
			return ErrInvalidTransition
		}

		listing.State = entity.ListingActive
		listing.English.AuctionEnd = now + listing.English.Duration

		e.recordTransition(listing, entity.AuctionStartedAction, now)

		zap.L().With(
			zap.Uint64("listingId", listing.Id),
			zap.Int64("auctionEnd", listing.English.AuctionEnd),
		).Info("Auction started")

		return nil
	})
}

func (e *Engine) PauseSale(listingId uint64, caller string) error {
	now := e.nowFn()

	return e.store.withListing(listingId, func(listing *entity.Listing) error {
		if caller != listing.Seller && !e.roles.HasRole(entity.GovernorRole, caller) {
			return ErrUnauthorized
		}
		if listing.State != entity.ListingListed && listing.State != entity.ListingActive {
			return ErrInvalidTransition
		}

		listing.State = entity.ListingPaused
		e.recordTransition(listing, entity.PausedAction, now)

		return nil
	})
}

func (e *Engine) UnpauseSale(listingId uint64, caller string) error {
	now := e.nowFn()

	return e.store.withListing(listingId, func(listing *entity.Listing) error {
		if caller != listing.Seller && !e.roles.HasRole(entity.GovernorRole, caller) {
			return ErrUnauthorized
		}
		if listing.State != entity.ListingPaused {
			return ErrInvalidTransition
		}

		listing.State = entity.ListingListed
		if listing.English != nil && listing.English.AuctionEnd > 0 {
			listing.State = entity.ListingActive
		}
		e.recordTransition(listing, entity.UnpausedAction, now)

		return nil
	})
}

// EndAuction settles an English auction to the highest bidder, or cancels it
// when no qualifying bid arrived. Before the auction end time only a
// governor may force the close.
func (e *Engine) EndAuction(listingId uint64, caller string) error {
	now := e.nowFn()

	return e.store.withListing(listingId, func(listing *entity.Listing) error {
		return e.endAuction(listing, caller, now)
	})
}

func (e *Engine) endAuction(listing *entity.Listing, caller string, now int64) error {
	if listing.SaleMode != entity.EnglishAuction {
		return ErrInvalidTransition
	}
	if listing.State == entity.ListingSold {
		return ErrAlreadySettled
	}
	if listing.State != entity.ListingActive {
		return ErrInvalidTransition
	}
	if now < listing.English.AuctionEnd && !e.roles.HasRole(entity.GovernorRole, caller) {
		return ErrUnauthorized
	}

	if listing.English.HighestBid != nil {
		// Proceeds were escrowed bid by bid; nothing further to collect.
		return e.settlement.Settle(listing, listing.English.HighestBid, listing.English.HighestBidder, now)
	}

	listing.State = entity.ListingCancelled
	e.recordTransition(listing, entity.CancelledAction, now)
	event.NotifyListing(event.ListingClosed, *listing)

	zap.L().With(zap.Uint64("listingId", listing.Id)).Info("Auction ended without qualifying bid")

	return nil
}

// CancelListing withdraws a listing that has not yet sold or started.
func (e *Engine) CancelListing(listingId uint64, caller string) error {
	now := e.nowFn()

	return e.store.withListing(listingId, func(listing *entity.Listing) error {
		if caller != listing.Seller && !e.roles.HasRole(entity.GovernorRole, caller) {
			return ErrUnauthorized
		}
		if listing.State == entity.ListingSold {
			return ErrAlreadySettled
		}
		if listing.State != entity.ListingListed {
			return ErrInvalidTransition
		}

		listing.State = entity.ListingCancelled
		e.recordTransition(listing, entity.CancelledAction, now)
		event.NotifyListing(event.ListingClosed, *listing)

		return nil
	})
}

// Sweep expires overdue Dutch listings and closes English auctions whose end
// time has passed. It is driven by the daemon.
func (e *Engine) Sweep() {
	now := e.nowFn()

	for _, id := range e.store.Ids() {
		err := e.store.withListing(id, func(listing *entity.Listing) error {
			switch listing.SaleMode {
			case entity.DutchAuction:
				if listing.Terminal() || now <= listing.Dutch.ExpiresAt {
					return ErrInvalidTransition
				}
				listing.State = entity.ListingExpired
				e.recordTransition(listing, entity.ExpiredAction, now)
				event.NotifyListing(event.ListingClosed, *listing)

				zap.L().With(zap.Uint64("listingId", listing.Id)).Info("Dutch listing expired")
				return nil
			case entity.EnglishAuction:
				if listing.State != entity.ListingActive || now < listing.English.AuctionEnd {
					return ErrInvalidTransition
				}
				return e.endAuction(listing, e.operator, now)
			}

			return ErrInvalidTransition
		})

		if err != nil && err != ErrInvalidTransition {
			zap.L().With(zap.Error(err), zap.Uint64("listingId", id)).Error("Sweep: failed to close listing")
		}
	}
}

// Deposit pulls funds from the account into its marketplace escrow credit.
func (e *Engine) Deposit(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInsufficientFunds
	}

	if err := e.checkFunds(account, amount); err != nil {
		return err
	}
	if err := e.funds.TransferFrom(account, e.operator, amount); err != nil {
		return ErrInsufficientFunds
	}

	e.releaseCredit(account, amount)

	return nil
}

// Withdraw returns escrow credit to the account's ledger balance.
func (e *Engine) Withdraw(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInsufficientFunds
	}

	reserved := e.reserveCredit(account, amount)
	if reserved.Cmp(amount) < 0 {
		e.releaseCredit(account, reserved)
		return ErrInsufficientFunds
	}

	if err := e.funds.Transfer(account, amount); err != nil {
		e.releaseCredit(account, amount)
		return err
	}

	return nil
}

// EscrowBalance returns the account's current escrow credit.
func (e *Engine) EscrowBalance(account string) *big.Int {
	e.creditMu.Lock()
	defer e.creditMu.Unlock()

	if credit, ok := e.credits[account]; ok {
		return new(big.Int).Set(credit)
	}

	return new(big.Int)
}

func (e *Engine) checkFunds(account string, amount *big.Int) error {
	balance, err := e.funds.BalanceOf(account)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	allowance, err := e.funds.Allowance(account, e.operator)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	return nil
}

// reserveCredit takes up to amount from the account's escrow credit and
// returns what was taken.
func (e *Engine) reserveCredit(account string, amount *big.Int) *big.Int {
	e.creditMu.Lock()
	defer e.creditMu.Unlock()

	credit, ok := e.credits[account]
	if !ok || credit.Sign() == 0 {
		return new(big.Int)
	}

	taken := new(big.Int).Set(amount)
	if credit.Cmp(amount) < 0 {
		taken.Set(credit)
	}

	credit.Sub(credit, taken)

	return taken
}

func (e *Engine) releaseCredit(account string, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	e.creditMu.Lock()
	defer e.creditMu.Unlock()

	if credit, ok := e.credits[account]; ok {
		credit.Add(credit, amount)
		return
	}
	e.credits[account] = new(big.Int).Set(amount)
}

func (e *Engine) recordTransition(listing *entity.Listing, action entity.ActionType, now int64) {
	e.recorder.Action(entity.MarketAction{
		ListingId:    listing.Id,
		TokenAddress: listing.TokenAddress,
		TokenId:      listing.TokenId,
		Action:       action,
		SaleMode:     listing.SaleMode,
		From:         listing.Seller,
		Timestamp:    now,
	})
}
