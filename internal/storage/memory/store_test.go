package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/domain"
	"bookshelf/internal/storage"
)

func TestStore_SeedIsCopied(t *testing.T) {
	seed := domain.SeedBooks()
	s := New(seed)
	seed[0].Title = "changed"

	books, err := s.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 10)
	assert.Equal(t, "The Great Gatsby", books[0].Title)
}

func TestStore_Lookups(t *testing.T) {
	ctx := context.Background()
	s := New(domain.SeedBooks())

	b, err := s.BookByISBN(ctx, "ISBN_8901234567")
	require.NoError(t, err)
	assert.Equal(t, 8, b.ID)

	_, err = s.BookByISBN(ctx, "isbn 1234567890")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.BookByID(ctx, 11)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	none, err := s.BooksByTitle(ctx, "Nothing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_ListIsASnapshot(t *testing.T) {
	ctx := context.Background()
	s := New(domain.SeedBooks())

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	books[0].Review = "local edit"

	b, err := s.BookByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "", b.Review)
}

func TestStore_CreateUserConflict(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	require.NoError(t, s.CreateUser(ctx, domain.User{Username: "alice", Password: "pw1"}))
	err := s.CreateUser(ctx, domain.User{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	u, err := s.UserByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "pw1", u.Password)
}

func TestStore_ConcurrentRegistrationsAdmitOneWinner(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.CreateUser(ctx, domain.User{Username: "bob", Password: "x"}) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
