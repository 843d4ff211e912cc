package accounts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/accounts"
	"bookshelf/internal/domain"
	"bookshelf/internal/storage/memory"
)

func TestDirectory_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	dir := accounts.New(memory.New(nil))

	require.NoError(t, dir.Register(ctx, "alice", "pw1"))
	assert.ErrorIs(t, dir.Register(ctx, "alice", "anything"), domain.ErrUsernameTaken)

	assert.NoError(t, dir.Login(ctx, "alice", "pw1"))
	assert.ErrorIs(t, dir.Login(ctx, "alice", "wrong"), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, dir.Login(ctx, "bob", "x"), domain.ErrInvalidCredentials)

	// the failed second registration must not replace the password
	assert.ErrorIs(t, dir.Login(ctx, "alice", "anything"), domain.ErrInvalidCredentials)
}

func TestDirectory_NoPasswordRules(t *testing.T) {
	ctx := context.Background()
	dir := accounts.New(memory.New(nil))

	require.NoError(t, dir.Register(ctx, "carol", ""))
	assert.NoError(t, dir.Login(ctx, "carol", ""))
	assert.ErrorIs(t, dir.Login(ctx, "Carol", ""), domain.ErrInvalidCredentials)
}

type brokenStore struct{}

func (brokenStore) CreateUser(context.Context, domain.User) error {
	return errors.New("boom")
}

func (brokenStore) UserByName(context.Context, string) (domain.User, error) {
	return domain.User{}, errors.New("boom")
}

func TestDirectory_StoreFailures(t *testing.T) {
	ctx := context.Background()
	dir := accounts.New(brokenStore{})

	err := dir.Register(ctx, "alice", "pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUsernameTaken)

	err = dir.Login(ctx, "alice", "pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}
