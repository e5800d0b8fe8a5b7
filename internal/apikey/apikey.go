package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/google/uuid"
)

// Store errors
var (
	ErrKeyNotFound    = errors.New("API key not found")
	ErrKeyRevoked     = errors.New("API key has been revoked")
	ErrKeyExpired     = errors.New("API key has expired")
	ErrInvalidKey     = errors.New("invalid API key format")
	ErrNoPermissions  = errors.New("at least one permission is required")
	ErrEmptyActions   = errors.New("permission action set must not be empty")
	ErrCeilingTooHigh = errors.New("requested rate ceiling exceeds the maximum")
)

const keyPrefix = "dwk_"

// IssueRequest describes a key to be issued.
type IssueRequest struct {
	Name        string
	Permissions []models.Permission
	// RateCeiling in requests per hour; the store default applies when 0.
	RateCeiling int
	ExpiresAt   *time.Time
}

// IssueResult carries the stored key and the plaintext token. The token is
// only available here; the store keeps its hash.
type IssueResult struct {
	Key   *models.APIKey
	Token string
}

// Store is the API key lifecycle and lookup interface. Validate is
// read-only: usage accounting happens later in the pipeline via RecordUse.
type Store interface {
	Issue(ctx context.Context, req IssueRequest) (*IssueResult, error)
	Validate(ctx context.Context, token string) (*models.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.APIKey, error)
	List(ctx context.Context) ([]*models.APIKey, error)
	RecordUse(ctx context.Context, id uuid.UUID, at time.Time) error
}

// generateToken generates a secure API key token.
// Returns: raw token, token hash, display prefix, error.
func generateToken() (string, string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	raw := keyPrefix + hex.EncodeToString(randomBytes)
	hash := HashToken(raw)
	// Display prefix: "dwk_" plus the first 8 characters.
	prefix := raw[:len(keyPrefix)+8]

	return raw, hash, prefix, nil
}

// HashToken creates a SHA-256 hash of a raw token. Exported so tests and the
// Postgres store can hash without re-deriving the scheme.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// wellFormed checks the token shape before any lookup.
func wellFormed(raw string) bool {
	return len(raw) > len(keyPrefix)+8 && raw[:len(keyPrefix)] == keyPrefix
}

// validatePermissions enforces the non-empty action set invariant.
func validatePermissions(perms []models.Permission) error {
	if len(perms) == 0 {
		return ErrNoPermissions
	}
	for _, p := range perms {
		if len(p.Actions) == 0 {
			return ErrEmptyActions
		}
	}
	return nil
}

// clonePermissions copies permissions so no slice is shared across keys.
func clonePermissions(perms []models.Permission) []models.Permission {
	out := make([]models.Permission, len(perms))
	for i, p := range perms {
		out[i] = p.Clone()
	}
	return out
}
