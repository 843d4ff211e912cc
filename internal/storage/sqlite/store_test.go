package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/domain"
	"bookshelf/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", domain.SeedBooks())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_ListBooksKeepsSeedOrder(t *testing.T) {
	s := openTestStore(t)

	books, err := s.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 10)
	for i, b := range books {
		assert.Equal(t, i+1, b.ID)
		assert.Equal(t, "", b.Review)
	}
	assert.Equal(t, domain.SeedBooks(), books)
}

func TestStore_SeedRunsOnce(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.seed(ctx, domain.SeedBooks()))

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 10)
}

func TestStore_Lookups(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	b, err := s.BookByISBN(ctx, "ISBN 1234567890")
	require.NoError(t, err)
	assert.Equal(t, "The Great Gatsby", b.Title)

	_, err = s.BookByISBN(ctx, "no-such")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	byAuthor, err := s.BooksByAuthor(ctx, "Jane Austen")
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Pride and Prejudice", byAuthor[0].Title)

	none, err := s.BooksByAuthor(ctx, "Nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	byTitle, err := s.BooksByTitle(ctx, "1984")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "George Orwell", byTitle[0].Author)
}

func TestStore_UpdateReview(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.UpdateReview(ctx, 1, "Great book"))
	b, err := s.BookByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Great book", b.Review)

	require.NoError(t, s.UpdateReview(ctx, 1, ""))
	require.NoError(t, s.UpdateReview(ctx, 1, ""))

	assert.ErrorIs(t, s.UpdateReview(ctx, 999, "x"), storage.ErrNotFound)
	_, err = s.BookByID(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.CreateUser(ctx, domain.User{Username: "alice", Password: "pw1"}))
	assert.ErrorIs(t, s.CreateUser(ctx, domain.User{Username: "alice", Password: "anything"}), storage.ErrConflict)

	u, err := s.UserByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.User{Username: "alice", Password: "pw1"}, u)

	_, err = s.UserByName(ctx, "bob")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
