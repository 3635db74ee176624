package market

import (
	"github.com/mintlane/marketplace-engine/internal/entity"
)

// Recorder receives every state change the engine commits so a read model
// can be maintained outside the engine. Implementations must not block the
// calling operation on failure; the engine treats recording as best effort.
type Recorder interface {
	Listing(listing entity.Listing)
	Action(action entity.MarketAction)
	License(license entity.License)
	Receipt(receipt entity.SettlementReceipt)
}

type NoopRecorder struct{}

func (NoopRecorder) Listing(entity.Listing)           {}
func (NoopRecorder) Action(entity.MarketAction)       {}
func (NoopRecorder) License(entity.License)           {}
func (NoopRecorder) Receipt(entity.SettlementReceipt) {}
