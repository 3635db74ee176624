package entity

import (
	"fmt"
	"github.com/gosimple/slug"
)

type Role string

const (
	MinterRole   Role = "MINTER_ROLE"
	GovernorRole Role = "GOVERNOR_ROLE"
)

type RoleGrant struct {
	Role    Role   `json:"role"`
	Account string `json:"account"`
	Active  bool   `json:"active"`
}

func (g RoleGrant) Slug() string {
	return CreateRoleGrantSlug(g.Role, g.Account)
}

func CreateRoleGrantSlug(role Role, account string) string {
	return slug.Make(fmt.Sprintf("role-%s-%s", role, account))
}
