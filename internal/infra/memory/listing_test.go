//go:build unit

package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/infra"
	"bookmarket/internal/infra/memory"
	"bookmarket/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateIfStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("applies when status matches", func(t *testing.T) {
		repo := memory.NewListingRepository()
		l := mustListing(t)
		require.NoError(t, repo.Create(ctx, l))

		held, err := l.Hold(uuid.New(), now, 15*time.Minute)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateIfStatus(ctx, held, listing.StatusAvailable))

		stored, err := repo.FindByID(ctx, l.ID())
		require.NoError(t, err)
		assert.Equal(t, listing.StatusHeld, stored.Status())
	})

	t.Run("conflict when status moved", func(t *testing.T) {
		repo := memory.NewListingRepository()
		l := mustListing(t)
		require.NoError(t, repo.Create(ctx, l))

		held, err := l.Hold(uuid.New(), now, 15*time.Minute)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateIfStatus(ctx, held, listing.StatusAvailable))

		// A second writer working from the stale available snapshot.
		stale, err := l.Hold(uuid.New(), now, 15*time.Minute)
		require.NoError(t, err)
		err = repo.UpdateIfStatus(ctx, stale, listing.StatusAvailable)
		require.True(t, infra.IsKind(err, infra.KindConflict))
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		repo := memory.NewListingRepository()
		l := mustListing(t)
		err := repo.UpdateIfStatus(ctx, l, listing.StatusAvailable)
		require.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("concurrent writers get exactly one success", func(t *testing.T) {
		repo := memory.NewListingRepository()
		l := mustListing(t)
		require.NoError(t, repo.Create(ctx, l))

		const writers = 20
		var wg sync.WaitGroup
		results := make([]error, writers)
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				held, err := l.Hold(uuid.New(), now, 15*time.Minute)
				if err != nil {
					results[i] = err
					return
				}
				results[i] = repo.UpdateIfStatus(ctx, held, listing.StatusAvailable)
			}()
		}
		wg.Wait()

		wins := 0
		for _, err := range results {
			if err == nil {
				wins++
			} else {
				assert.True(t, infra.IsKind(err, infra.KindConflict))
			}
		}
		assert.Equal(t, 1, wins)
	})
}

func TestUpdateIfHeldBy(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	holdFor := func(t *testing.T, repo *memory.ListingRepository, l *listing.Listing, orderID uuid.UUID) *listing.Listing {
		t.Helper()
		held, err := l.Hold(orderID, now, 15*time.Minute)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateIfStatus(ctx, held, listing.StatusAvailable))
		return held
	}

	t.Run("applies for the holding order", func(t *testing.T) {
		repo := memory.NewListingRepository()
		l := mustListing(t)
		require.NoError(t, repo.Create(ctx, l))

		owner := uuid.New()
		held := holdFor(t, repo, l, owner)

		released, err := held.Release(now)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateIfHeldBy(ctx, released, owner))

		stored, err := repo.FindByID(ctx, l.ID())
		require.NoError(t, err)
		assert.Equal(t, listing.StatusAvailable, stored.Status())
	})

	t.Run("conflict for a different holder", func(t *testing.T) {
		repo := memory.NewListingRepository()
		l := mustListing(t)
		require.NoError(t, repo.Create(ctx, l))

		owner := uuid.New()
		held := holdFor(t, repo, l, owner)

		released, err := held.Release(now)
		require.NoError(t, err)
		err = repo.UpdateIfHeldBy(ctx, released, uuid.New())
		require.True(t, infra.IsKind(err, infra.KindConflict))

		stored, err := repo.FindByID(ctx, l.ID())
		require.NoError(t, err)
		assert.Equal(t, listing.StatusHeld, stored.Status())
	})

	t.Run("conflict when not held at all", func(t *testing.T) {
		repo := memory.NewListingRepository()
		l := mustListing(t)
		require.NoError(t, repo.Create(ctx, l))

		err := repo.UpdateIfHeldBy(ctx, l, uuid.New())
		require.True(t, infra.IsKind(err, infra.KindConflict))
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		repo := memory.NewListingRepository()
		l := mustListing(t)
		err := repo.UpdateIfHeldBy(ctx, l, uuid.New())
		require.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

func TestFindExpiredHeld(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := memory.NewListingRepository()

	expired := mustListing(t)
	require.NoError(t, repo.Create(ctx, expired))
	held, err := expired.Hold(uuid.New(), now, 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateIfStatus(ctx, held, listing.StatusAvailable))

	fresh := mustListing(t)
	require.NoError(t, repo.Create(ctx, fresh))
	freshHeld, err := fresh.Hold(uuid.New(), now, time.Hour)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateIfStatus(ctx, freshHeld, listing.StatusAvailable))

	got, err := repo.FindExpiredHeld(ctx, now.Add(10*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expired.ID(), got[0].ID())
}

func mustListing(t *testing.T) *listing.Listing {
	t.Helper()
	l, err := builder.NewListingBuilder().BuildDomain()
	require.NoError(t, err)
	return l
}
