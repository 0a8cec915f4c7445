package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/entity"
	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/repository"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/postgres"
)

func TestRepository_ClientRoundTrip(t *testing.T) {
	t.Parallel()

	repo := repository.New(dbPool(t))

	want := randomClient()

	err := repo.CreateClient(context.Background(), want)
	require.NoError(t, err)

	got, err := repo.ClientByName(context.Background(), want.Name)
	require.NoError(t, err)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.PriceSheetLink, got.PriceSheetLink)
	require.Equal(t, want.CustomerNumber, got.CustomerNumber)
	require.False(t, got.CreatedAt.IsZero())
}

func TestRepository_CreateClient_Duplicate(t *testing.T) {
	t.Parallel()

	repo := repository.New(dbPool(t))

	client := randomClient()

	err := repo.CreateClient(context.Background(), client)
	require.NoError(t, err)

	err = repo.CreateClient(context.Background(), client)
	require.ErrorIs(t, err, entity.ErrAlreadyExists)
}

func TestRepository_CreateClient_ConcurrentSameName(t *testing.T) {
	t.Parallel()

	repo := repository.New(dbPool(t))

	client := randomClient()

	const workers = 5

	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			errs <- repo.CreateClient(context.Background(), client)
		}()
	}

	var created, duplicates int

	for i := 0; i < workers; i++ {
		err := <-errs

		switch {
		case err == nil:
			created++
		default:
			require.ErrorIs(t, err, entity.ErrAlreadyExists)

			duplicates++
		}
	}

	require.Equal(t, 1, created)
	require.Equal(t, workers-1, duplicates)
}

func TestRepository_Clients_Ordering(t *testing.T) {
	t.Parallel()

	repo := repository.New(dbPool(t))

	prefix := uuid.Must(uuid.NewV4()).String()

	second := randomClient()
	second.Name = prefix + "-b"

	first := randomClient()
	first.Name = prefix + "-a"

	require.NoError(t, repo.CreateClient(context.Background(), second))
	require.NoError(t, repo.CreateClient(context.Background(), first))

	clients, err := repo.Clients(context.Background())
	require.NoError(t, err)

	firstIdx, secondIdx := -1, -1

	for i, c := range clients {
		switch c.Name {
		case first.Name:
			firstIdx = i
		case second.Name:
			secondIdx = i
		}
	}

	require.NotEqual(t, -1, firstIdx)
	require.NotEqual(t, -1, secondIdx)
	require.Less(t, firstIdx, secondIdx)
}

func TestRepository_DeleteClient(t *testing.T) {
	t.Parallel()

	repo := repository.New(dbPool(t))

	client := randomClient()

	err := repo.CreateClient(context.Background(), client)
	require.NoError(t, err)

	err = repo.DeleteClient(context.Background(), client.Name)
	require.NoError(t, err)

	_, err = repo.ClientByName(context.Background(), client.Name)
	require.ErrorIs(t, err, entity.ErrNotFound)

	err = repo.DeleteClient(context.Background(), client.Name)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func randomClient() entity.Client {
	return entity.Client{
		Name:           uuid.Must(uuid.NewV4()).String(),
		PriceSheetLink: "https://docs.google.com/spreadsheets/d/" + uuid.Must(uuid.NewV4()).String() + "/edit",
		CustomerNumber: uuid.Must(uuid.NewV4()).String(),
	}
}

func dbPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN is not set")
	}

	pool, err := postgres.Connect(context.Background(), dsn, 10)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	err = postgres.UpMigrations(dsn)
	require.NoError(t, err)

	return pool
}
