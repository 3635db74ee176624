package daemon

import (
	"github.com/mintlane/marketplace-engine/internal/config"
	"github.com/mintlane/marketplace-engine/internal/elastic_search"
	"github.com/mintlane/marketplace-engine/internal/market"
	"go.uber.org/zap"
	"time"
)

// Daemon drives the time-based side of the engine: it periodically expires
// overdue Dutch listings, closes English auctions past their end time and
// flushes the elastic read model.
type Daemon struct {
	elastic     elastic_search.Index
	marketplace *market.Marketplace
}

func NewDaemon(elastic elastic_search.Index, marketplace *market.Marketplace) *Daemon {
	return &Daemon{elastic, marketplace}
}

func (d *Daemon) Execute() {
	d.elastic.InstallMappings()

	interval := time.Duration(config.Get().SweepInterval) * time.Second

	zap.L().With(zap.Duration("interval", interval)).Info("Starting market sweeper")

	for {
		d.marketplace.Engine().Sweep()
		d.elastic.Persist()

		time.Sleep(interval)
	}
}
