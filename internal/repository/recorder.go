package repository

import (
	"github.com/mintlane/marketplace-engine/internal/elastic_search"
	"github.com/mintlane/marketplace-engine/internal/entity"
)

// ElasticRecorder feeds the engine's state changes into the elastic read
// model as index requests; persistence is batched by the elastic service.
type ElasticRecorder struct {
	elastic elastic_search.Index
}

func NewElasticRecorder(elastic elastic_search.Index) ElasticRecorder {
	return ElasticRecorder{elastic}
}

func (r ElasticRecorder) Listing(listing entity.Listing) {
	r.elastic.AddIndexRequest(elastic_search.ListingIndex.Get(), listing, elastic_search.ListingUpdate)
}

func (r ElasticRecorder) Action(action entity.MarketAction) {
	r.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketAction)
}

func (r ElasticRecorder) License(license entity.License) {
	r.elastic.AddIndexRequest(elastic_search.LicenseIndex.Get(), license, elastic_search.LicenseCreate)
}

func (r ElasticRecorder) Receipt(receipt entity.SettlementReceipt) {
	r.elastic.AddIndexRequest(elastic_search.ReceiptIndex.Get(), receipt, elastic_search.ReceiptCreate)
}
