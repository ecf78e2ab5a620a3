//go:build integration

package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/persistence"
)

// Run with: TEST_POSTGRES_DSN=postgres://... go test -tags integration ./internal/repository/
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 20}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	_, err = persistence.RunMigrations(ctx, pg.PoolHandle(), "../../migrations", zap.NewNop())
	require.NoError(t, err)
	return pg.PoolHandle()
}

func TestPostgresUpdateSerializesConcurrentVotes(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	complaints := NewComplaintRepository(pool)

	citizen := &domain.Actor{Name: "Asha", Email: uuid.NewString() + "@example.in", Role: domain.RoleCitizen, Active: true}
	require.NoError(t, users.Create(ctx, citizen))

	now := time.Now().UTC().Truncate(time.Microsecond)
	c := newComplaint(uuid.NewString(), domain.DepartmentRoads, 0, now)
	c.CitizenID = citizen.ID
	require.NoError(t, complaints.Create(ctx, c))
	t.Cleanup(func() { _ = complaints.Delete(ctx, c.ID) })

	const voters = 30
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voter := fmt.Sprintf("voter-%d", i)
			_, err := complaints.Update(ctx, c.ID, func(locked *domain.Complaint) error {
				if locked.HasVoted(voter) {
					return ErrNoChange
				}
				locked.VotedBy = append(locked.VotedBy, voter)
				locked.Votes++
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := complaints.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, stored.Votes)
	assert.Len(t, stored.VotedBy, voters)

	_, err = complaints.Update(ctx, uuid.NewString(), func(*domain.Complaint) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresListByRole(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)

	officer := &domain.Actor{
		Name: "Parks Desk", Email: uuid.NewString() + "@example.in",
		Role: domain.RoleDepartment, Department: domain.DepartmentParks, Active: true,
	}
	require.NoError(t, users.Create(ctx, officer))
	_, err := users.RecordRating(ctx, officer.ID, 4)
	require.NoError(t, err)

	officers, err := users.ListByRole(ctx, domain.RoleDepartment)
	require.NoError(t, err)
	var found *domain.Actor
	for i := range officers {
		assert.Equal(t, domain.RoleDepartment, officers[i].Role)
		if officers[i].ID == officer.ID {
			found = &officers[i]
		}
	}
	require.NotNil(t, found)
	assert.InDelta(t, 4.0, found.AverageRating, 1e-9)
	assert.Equal(t, 1, found.TotalRatings)
}
