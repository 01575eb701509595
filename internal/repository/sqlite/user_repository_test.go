package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"address-book/internal/domain"
	"address-book/internal/repository"
)

func newTestUserRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestUserCreateAndGet(t *testing.T) {
	repo := newTestUserRepo(t)

	user := &domain.User{
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "hash",
		Avatar:       "https://example.com/a.png",
	}
	id, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.False(t, got.Confirmed)
	assert.Empty(t, got.RefreshToken)

	byID, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, got.Email, byID.Email)
}

func TestUserDuplicateEmail(t *testing.T) {
	repo := newTestUserRepo(t)

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), &domain.User{Username: "bob", Email: "a@x.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRefreshTokenLifecycle(t *testing.T) {
	repo := newTestUserRepo(t)

	id, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateRefreshToken(context.Background(), id, "tok-1"))
	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.RefreshToken)

	require.NoError(t, repo.UpdateRefreshToken(context.Background(), id, ""))
	got, err = repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, got.RefreshToken)

	assert.ErrorIs(t, repo.UpdateRefreshToken(context.Background(), 42, "tok"), repository.ErrNotFound)
}

func TestUserMarkConfirmed(t *testing.T) {
	repo := newTestUserRepo(t)

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkConfirmed(context.Background(), "a@x.com"))
	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, got.Confirmed)

	assert.ErrorIs(t, repo.MarkConfirmed(context.Background(), "ghost@x.com"), repository.ErrNotFound)
}

func TestUserUpdateAvatar(t *testing.T) {
	repo := newTestUserRepo(t)

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateAvatar(context.Background(), "a@x.com", "https://cdn.example.com/a.jpg"))
	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", got.Avatar)
}
