package market

import (
	"github.com/mintlane/marketplace-engine/internal/entity"
	"github.com/mintlane/marketplace-engine/internal/registry"
	"go.uber.org/zap"
)

// Issuer gates asset creation on the minter role before forwarding the mint
// to the ownership registry.
type Issuer struct {
	roles    *Roles
	registry registry.Service
}

func NewIssuer(roles *Roles, registry registry.Service) Issuer {
	return Issuer{roles, registry}
}

func (i Issuer) Create(caller, collection, recipient string, quantity uint64, uri string) (uint64, error) {
	if !i.roles.HasRole(entity.MinterRole, caller) {
		return 0, ErrUnauthorized
	}
	if quantity < 1 {
		return 0, ErrInvalidAsset
	}

	tokenId, err := i.registry.Mint(collection, recipient, quantity, uri)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("collection", collection)).Error("Issuer: mint failed")
		return 0, err
	}

	zap.L().With(
		zap.String("collection", collection),
		zap.Uint64("tokenId", tokenId),
		zap.String("recipient", recipient),
		zap.Uint64("quantity", quantity),
	).Info("Asset created")

	return tokenId, nil
}
