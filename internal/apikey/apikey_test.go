package apikey

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) (*MemoryStore, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	return NewMemoryStore(clk, 1000, 10000), clk
}

func readPermission(resource string) models.Permission {
	return models.Permission{Resource: resource, Actions: []models.Action{models.ActionRead}}
}

func TestIssueAndValidate(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	result, err := store.Issue(ctx, IssueRequest{
		Name:        "integration-partner",
		Permissions: []models.Permission{readPermission("walkers")},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.Token, "dwk_"))
	assert.Equal(t, 1000, result.Key.RateCeiling, "default ceiling applies when omitted")
	assert.True(t, result.Key.Active)

	key, err := store.Validate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Key.ID, key.ID)
	assert.Equal(t, "integration-partner", key.Name)
}

func TestValidateIsReadOnly(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	result, err := store.Issue(ctx, IssueRequest{
		Name:        "quiet",
		Permissions: []models.Permission{readPermission("walkers")},
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := store.Validate(ctx, result.Token)
		require.NoError(t, err)
	}

	key, err := store.Get(ctx, result.Key.ID)
	require.NoError(t, err)
	assert.Zero(t, key.UsageCount, "validation must not count as usage")
	assert.Nil(t, key.LastUsedAt)
}

func TestValidateRejections(t *testing.T) {
	store, clk := testStore(t)
	ctx := context.Background()

	expiry := clk.Now().Add(time.Hour)
	result, err := store.Issue(ctx, IssueRequest{
		Name:        "short-lived",
		Permissions: []models.Permission{readPermission("walkers")},
		ExpiresAt:   &expiry,
	})
	require.NoError(t, err)

	t.Run("unknown token", func(t *testing.T) {
		_, err := store.Validate(ctx, "dwk_0000000000000000000000000000000000000000000000000000000000000000")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := store.Validate(ctx, "not-a-real-key")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("expired token", func(t *testing.T) {
		clk.Advance(2 * time.Hour)
		_, err := store.Validate(ctx, result.Token)
		assert.ErrorIs(t, err, ErrKeyExpired)
		clk.Advance(-2 * time.Hour)
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, result.Key.ID))
		_, err := store.Validate(ctx, result.Token)
		assert.ErrorIs(t, err, ErrKeyRevoked)
	})
}

func TestRevokeIsIdempotentAndKeepsKey(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	result, err := store.Issue(ctx, IssueRequest{
		Name:        "doomed",
		Permissions: []models.Permission{readPermission("bookings")},
	})
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, result.Key.ID))
	require.NoError(t, store.Revoke(ctx, result.Key.ID))

	// Deactivated, never deleted: history endpoints still resolve the id.
	key, err := store.Get(ctx, result.Key.ID)
	require.NoError(t, err)
	assert.False(t, key.Active)
}

func TestIssueValidation(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	_, err := store.Issue(ctx, IssueRequest{Name: "no-perms"})
	assert.ErrorIs(t, err, ErrNoPermissions)

	_, err = store.Issue(ctx, IssueRequest{
		Name:        "empty-actions",
		Permissions: []models.Permission{{Resource: "walkers"}},
	})
	assert.ErrorIs(t, err, ErrEmptyActions)

	_, err = store.Issue(ctx, IssueRequest{
		Name:        "greedy",
		Permissions: []models.Permission{readPermission("walkers")},
		RateCeiling: 99999,
	})
	assert.ErrorIs(t, err, ErrCeilingTooHigh)
}

func TestPermissionsAreCopiedNotShared(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	perm := readPermission("walkers")
	result, err := store.Issue(ctx, IssueRequest{
		Name:        "isolated",
		Permissions: []models.Permission{perm},
	})
	require.NoError(t, err)

	// Mutating the caller's slice must not leak into the stored key.
	perm.Actions[0] = models.ActionDelete

	key, err := store.Validate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, models.ActionRead, key.Permissions[0].Actions[0])
}

func TestRecordUseConcurrent(t *testing.T) {
	store, clk := testStore(t)
	ctx := context.Background()

	result, err := store.Issue(ctx, IssueRequest{
		Name:        "busy",
		Permissions: []models.Permission{readPermission("walkers")},
	})
	require.NoError(t, err)

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = store.RecordUse(ctx, result.Key.ID, clk.Now())
			}
		}()
	}
	wg.Wait()

	key, err := store.Get(ctx, result.Key.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), key.UsageCount, "no increment may be lost")
	require.NotNil(t, key.LastUsedAt)
}
