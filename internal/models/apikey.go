package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action is a single operation a Permission may allow on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// ActionForMethod maps an HTTP method to the action an endpoint with that
// method requires: GET reads, POST/PUT write, DELETE deletes.
func ActionForMethod(method string) Action {
	switch strings.ToUpper(method) {
	case "GET":
		return ActionRead
	case "POST", "PUT":
		return ActionWrite
	case "DELETE":
		return ActionDelete
	default:
		return ActionRead
	}
}

// Permission grants a set of actions on one resource. Scopes are carried but
// not enforced by the admission pipeline.
type Permission struct {
	Resource string   `json:"resource"`
	Actions  []Action `json:"actions"`
	Scopes   []string `json:"scopes,omitempty"`
}

// Allows reports whether the permission covers the given resource and action.
// Resource matching is case-insensitive.
func (p Permission) Allows(resource string, action Action) bool {
	if !strings.EqualFold(p.Resource, resource) {
		return false
	}
	for _, a := range p.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Permissions are owned by the key that declares
// them, so stores copy instead of sharing slices across keys.
func (p Permission) Clone() Permission {
	out := Permission{Resource: p.Resource}
	out.Actions = append([]Action(nil), p.Actions...)
	if p.Scopes != nil {
		out.Scopes = append([]string(nil), p.Scopes...)
	}
	return out
}

// APIKey is an integrator credential. The raw token is only held by the
// caller; the store keeps a SHA-256 hash plus a short display prefix.
// Keys are never deleted, only deactivated, so usage history stays intact.
type APIKey struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	KeyHash     string       `json:"-"`
	KeyPrefix   string       `json:"key_prefix"`
	Permissions []Permission `json:"permissions"`
	RateCeiling int          `json:"rate_ceiling"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time   `json:"last_used_at,omitempty"`
	UsageCount  int64        `json:"usage_count"`
}

// Usable reports whether the key may authenticate a request at the given
// instant: it must be active and either carry no expiry or expire later.
func (k *APIKey) Usable(now time.Time) bool {
	if !k.Active {
		return false
	}
	if k.ExpiresAt != nil && !k.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Can reports whether any of the key's permissions covers (resource, action).
func (k *APIKey) Can(resource string, action Action) bool {
	for _, p := range k.Permissions {
		if p.Allows(resource, action) {
			return true
		}
	}
	return false
}
