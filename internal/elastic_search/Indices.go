package elastic_search

import (
	"fmt"
	"github.com/mintlane/marketplace-engine/internal/config"
)

type Indices string

var (
	ListingIndex      Indices = "listing"
	MarketActionIndex Indices = "marketaction"
	LicenseIndex      Indices = "license"
	ReceiptIndex      Indices = "receipt"
)

// Sets the network and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}
