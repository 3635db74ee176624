package market

import (
	"github.com/mintlane/marketplace-engine/internal/entity"
	"go.uber.org/zap"
	"sync"
)

// Roles maps an account to a set of named permissions. It is handed to any
// component needing an authorization check rather than consulted as global
// state.
type Roles struct {
	mu     sync.RWMutex
	grants map[entity.Role]map[string]bool
}

func NewRoles() *Roles {
	return &Roles{grants: make(map[entity.Role]map[string]bool)}
}

func (r *Roles) GrantRole(role entity.Role, account string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.grants[role] == nil {
		r.grants[role] = make(map[string]bool)
	}
	r.grants[role][account] = true

	zap.L().With(
		zap.String("role", string(role)),
		zap.String("account", account),
	).Info("Role granted")
}

func (r *Roles) RevokeRole(role entity.Role, account string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.grants[role] != nil {
		delete(r.grants[role], account)
	}

	zap.L().With(
		zap.String("role", string(role)),
		zap.String("account", account),
	).Info("Role revoked")
}

func (r *Roles) HasRole(role entity.Role, account string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.grants[role][account]
}
