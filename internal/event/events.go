package event

import (
	"github.com/mintlane/marketplace-engine/internal/entity"
)

type Kind string

const (
	BidPlaced     Kind = "BidPlaced"
	BidRefunded   Kind = "BidRefunded"
	ListingClosed Kind = "ListingClosed"
)

// ListingEvent pairs a lifecycle change with a snapshot of the listing as it
// was when the change committed.
type ListingEvent struct {
	Kind    Kind
	Listing entity.Listing
}
