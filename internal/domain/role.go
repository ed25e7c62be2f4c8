package domain

import (
	"fmt"
	"strings"
)

// Role is a class of network participant with its own requirement subtree
type Role string

const (
	RoleMiner     Role = "miner"
	RoleValidator Role = "validator"
)

// Roles lists the known participant roles in declaration order
var Roles = []Role{RoleMiner, RoleValidator}

// ParseRole normalizes and validates a role name
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Roles {
		if role == known {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", raw)
}
