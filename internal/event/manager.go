package event

import (
	"sync"

	"github.com/mintlane/marketplace-engine/internal/entity"
	"go.uber.org/zap"
)

// Each subscriber owns a channel drained by its own goroutine, so a slow
// consumer never holds up the engine's critical sections.
var (
	mu           sync.RWMutex
	receiptSinks []chan entity.SettlementReceipt
	listingSinks []chan ListingEvent
)

func OnSaleSettled(handler func(receipt entity.SettlementReceipt)) {
	sink := make(chan entity.SettlementReceipt)

	mu.Lock()
	receiptSinks = append(receiptSinks, sink)
	mu.Unlock()

	go func() {
		for receipt := range sink {
			handler(receipt)
		}
	}()
}

func OnListing(handler func(e ListingEvent)) {
	sink := make(chan ListingEvent)

	mu.Lock()
	listingSinks = append(listingSinks, sink)
	mu.Unlock()

	go func() {
		for e := range sink {
			handler(e)
		}
	}()
}

func SaleSettled(receipt entity.SettlementReceipt) {
	mu.RLock()
	defer mu.RUnlock()

	if len(receiptSinks) == 0 {
		zap.L().With(zap.Uint64("listingId", receipt.ListingId)).Debug("No receipt subscribers")
	}
	for _, sink := range receiptSinks {
		go func(sink chan entity.SettlementReceipt) {
			sink <- receipt
		}(sink)
	}
}

func NotifyListing(kind Kind, listing entity.Listing) {
	mu.RLock()
	defer mu.RUnlock()

	for _, sink := range listingSinks {
		go func(sink chan ListingEvent) {
			sink <- ListingEvent{Kind: kind, Listing: listing}
		}(sink)
	}
}
