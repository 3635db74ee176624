package market

import (
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/funds"
	"github.com/mintlane/marketplace-engine/internal/registry"
	"go.uber.org/zap"
	"sync"
)

// Marketplace ties the listing store, sale engine, settlement distributor,
// role registry and license ledger together behind a single initialize-once
// entry point, mirroring how a deployed instance is configured exactly once.
type Marketplace struct {
	mu          sync.Mutex
	initialized bool

	store    *Store
	engine   *Engine
	roles    *Roles
	licenses *LicenseLedger
}

func NewMarketplace() *Marketplace {
	return &Marketplace{}
}

// Initialize wires the marketplace to its collaborators. A second call
// fails with ErrAlreadyInitialized.
func (m *Marketplace) Initialize(
	registrySvc registry.Service,
	fundsSvc funds.Service,
	licenses *LicenseLedger,
	recorder Recorder,
	treasury string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return ErrAlreadyInitialized
	}

	if recorder == nil {
		recorder = NoopRecorder{}
	}

	m.roles = NewRoles()
	m.roles.GrantRole(entity.GovernorRole, treasury)

	m.store = NewStore(registrySvc, m.roles, recorder, treasury)
	settlement := NewDistributor(registrySvc, fundsSvc, recorder)
	m.engine = NewEngine(m.store, fundsSvc, m.roles, settlement, recorder, treasury)

	m.licenses = licenses
	if err := m.licenses.Initialize(registrySvc, recorder); err != nil && err != ErrAlreadyInitialized {
		return err
	}

	m.initialized = true

	zap.L().With(zap.String("treasury", treasury)).Info("Marketplace initialized")

	return nil
}

func (m *Marketplace) Store() *Store {
	return m.store
}

func (m *Marketplace) Engine() *Engine {
	return m.engine
}

func (m *Marketplace) Roles() *Roles {
	return m.roles
}

func (m *Marketplace) Licenses() *LicenseLedger {
	return m.licenses
}
