package apikey

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps issued keys in process memory. Keys do not survive a
// restart; deployments that need persistence use the Postgres store instead.
type MemoryStore struct {
	mu             sync.RWMutex
	byID           map[uuid.UUID]*models.APIKey
	byHash         map[string]uuid.UUID
	clock          clock.Clock
	defaultCeiling int
	maxCeiling     int
}

// NewMemoryStore creates an in-memory key store. Keys issued without an
// explicit rate ceiling get defaultCeiling; no key may exceed maxCeiling.
func NewMemoryStore(clk clock.Clock, defaultCeiling, maxCeiling int) *MemoryStore {
	return &MemoryStore{
		byID:           make(map[uuid.UUID]*models.APIKey),
		byHash:         make(map[string]uuid.UUID),
		clock:          clk,
		defaultCeiling: defaultCeiling,
		maxCeiling:     maxCeiling,
	}
}

// Issue creates and stores a new key with a freshly generated token.
func (s *MemoryStore) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if err := validatePermissions(req.Permissions); err != nil {
		return nil, err
	}

	ceiling := req.RateCeiling
	if ceiling == 0 {
		ceiling = s.defaultCeiling
	}
	if ceiling < 0 {
		return nil, fmt.Errorf("rate ceiling must be positive, got %d", req.RateCeiling)
	}
	if ceiling > s.maxCeiling {
		return nil, ErrCeilingTooHigh
	}

	raw, hash, prefix, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	key := &models.APIKey{
		ID:          uuid.New(),
		Name:        req.Name,
		KeyHash:     hash,
		KeyPrefix:   prefix,
		Permissions: clonePermissions(req.Permissions),
		RateCeiling: ceiling,
		Active:      true,
		CreatedAt:   s.clock.Now(),
		ExpiresAt:   req.ExpiresAt,
	}

	s.mu.Lock()
	s.byID[key.ID] = key
	s.byHash[hash] = key.ID
	s.mu.Unlock()

	return &IssueResult{Key: snapshot(key), Token: raw}, nil
}

// Validate looks up a key by raw token. It is read-only: last-used and usage
// counters are updated by RecordUse once the pipeline completes.
func (s *MemoryStore) Validate(ctx context.Context, token string) (*models.APIKey, error) {
	if !wellFormed(token) {
		return nil, ErrInvalidKey
	}
	hash := HashToken(token)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHash[hash]
	if !ok {
		return nil, ErrKeyNotFound
	}
	key := s.byID[id]
	if !key.Active {
		return nil, ErrKeyRevoked
	}
	now := s.clock.Now()
	if key.ExpiresAt != nil && !key.ExpiresAt.After(now) {
		return nil, ErrKeyExpired
	}

	return snapshot(key), nil
}

// Revoke deactivates a key. Idempotent; the key stays stored so telemetry
// history keeps resolving its id.
func (s *MemoryStore) Revoke(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[id]
	if !ok {
		return ErrKeyNotFound
	}
	key.Active = false
	return nil
}

// Get returns a key by id regardless of its active state.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byID[id]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return snapshot(key), nil
}

// List returns all issued keys, active or not, ordered by creation time.
func (s *MemoryStore) List(ctx context.Context) ([]*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]*models.APIKey, 0, len(s.byID))
	for _, key := range s.byID {
		keys = append(keys, snapshot(key))
	}
	sortKeysByCreation(keys)
	return keys, nil
}

// RecordUse increments the usage counter and stamps last-used.
func (s *MemoryStore) RecordUse(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[id]
	if !ok {
		return ErrKeyNotFound
	}
	key.UsageCount++
	t := at
	key.LastUsedAt = &t
	return nil
}

// snapshot copies a key so callers never share mutable state with the store.
func snapshot(key *models.APIKey) *models.APIKey {
	out := *key
	out.Permissions = clonePermissions(key.Permissions)
	if key.ExpiresAt != nil {
		t := *key.ExpiresAt
		out.ExpiresAt = &t
	}
	if key.LastUsedAt != nil {
		t := *key.LastUsedAt
		out.LastUsedAt = &t
	}
	return &out
}

func sortKeysByCreation(keys []*models.APIKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.Before(keys[j].CreatedAt)
	})
}
