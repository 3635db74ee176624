package market

import (
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/event"
	"github.com/mintlane/marketplace-engine/internal/funds"
	"github.com/mintlane/marketplace-engine/internal/registry"
	"go.uber.org/zap"
	"math/big"
)

// Distributor concludes a sale: it computes the royalty split, moves the
// asset out of escrow to the buyer and distributes the proceeds to the
// stakeholders, with the residual going to the seller.
type Distributor struct {
	registry registry.Service
	funds    funds.Service
	recorder Recorder
}

func NewDistributor(registry registry.Service, funds funds.Service, recorder Recorder) *Distributor {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &Distributor{registry, funds, recorder}
}

// Settle is called with the listing lock held and with the full proceeds
// already held by the treasury. The caller is responsible for returning the
// proceeds to the buyer when settlement fails.
func (d *Distributor) Settle(listing *entity.Listing, finalPrice *big.Int, buyer string, now int64) error {
	if listing.State == entity.ListingSold {
		return ErrAlreadySettled
	}

	payouts := make([]entity.Payout, 0, len(listing.Stakeholders))
	residual := new(big.Int).Set(finalPrice)
	royaltyTotal := new(big.Int)

	for i, stakeholder := range listing.Stakeholders {
		share := new(big.Int).Mul(finalPrice, new(big.Int).SetUint64(uint64(listing.RoyaltySplit[i])))
		share.Div(share, big.NewInt(10000))

		residual.Sub(residual, share)
		royaltyTotal.Add(royaltyTotal, share)
		payouts = append(payouts, entity.Payout{Account: stakeholder, Amount: share.String()})
	}

	if err := d.registry.Transfer(listing.TokenAddress, listing.TokenId, listing.Quantity, listing.Seller, buyer); err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("listingId", listing.Id)).Error("Settlement: asset transfer failed")
		return err
	}

	for _, payout := range payouts {
		amount, _ := new(big.Int).SetString(payout.Amount, 10)
		if amount.Sign() == 0 {
			continue
		}
		if err := d.funds.Transfer(payout.Account, amount); err != nil {
			zap.L().With(zap.Error(err), zap.String("stakeholder", payout.Account)).Error("Settlement: stakeholder payout failed")
			d.undoAssetTransfer(listing, buyer)
			return err
		}
	}

	if err := d.funds.Transfer(listing.Seller, residual); err != nil {
		zap.L().With(zap.Error(err), zap.String("seller", listing.Seller)).Error("Settlement: seller payout failed")
		d.undoAssetTransfer(listing, buyer)
		return err
	}

	listing.State = entity.ListingSold

	receipt := entity.SettlementReceipt{
		ListingId:    listing.Id,
		TokenAddress: listing.TokenAddress,
		TokenId:      listing.TokenId,
		SaleMode:     listing.SaleMode,
		Buyer:        buyer,
		Seller:       listing.Seller,
		FinalPrice:   finalPrice.String(),
		Payouts:      payouts,
		Residual:     residual.String(),
		Fungible:     d.funds.Token(),
		SettledAt:    now,
	}

	d.recorder.Receipt(receipt)
	d.recorder.Action(entity.MarketAction{
		ListingId:    listing.Id,
		TokenAddress: listing.TokenAddress,
		TokenId:      listing.TokenId,
		Action:       entity.SaleAction,
		SaleMode:     listing.SaleMode,
		From:         listing.Seller,
		To:           buyer,
		Cost:         finalPrice.String(),
		Royalty:      royaltyTotal.String(),
		Fungible:     d.funds.Token(),
		Timestamp:    now,
	})

	event.SaleSettled(receipt)

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.String("saleMode", string(listing.SaleMode)),
		zap.String("buyer", buyer),
		zap.String("seller", listing.Seller),
		zap.String("cost", finalPrice.String()),
		zap.String("royalty", royaltyTotal.String()),
		zap.String("fungible", d.funds.Token()),
	).Info("Marketplace trade settled")

	return nil
}

// undoAssetTransfer moves the asset back to the seller after a payout step
// failed. The registry accepted the outbound transfer moments earlier, so a
// failure here is logged rather than masking the original error.
func (d *Distributor) undoAssetTransfer(listing *entity.Listing, buyer string) {
	if err := d.registry.Transfer(listing.TokenAddress, listing.TokenId, listing.Quantity, buyer, listing.Seller); err != nil {
		zap.L().With(
			zap.Error(err),
			zap.Uint64("listingId", listing.Id),
			zap.String("buyer", buyer),
		).Error("Settlement: failed to return asset after payout failure")
	}
}
