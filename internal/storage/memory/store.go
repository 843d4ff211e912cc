// Package memory keeps books and users in process memory.
package memory

import (
	"context"
	"sync"

	"bookshelf/internal/domain"
	"bookshelf/internal/storage"
)

// Store owns both collections. A single lock covers them, so every
// read-modify-write sequence is atomic.
type Store struct {
	mu    sync.RWMutex
	books []domain.Book
	users map[string]domain.User
}

func New(seed []domain.Book) *Store {
	books := make([]domain.Book, len(seed))
	copy(books, seed)
	return &Store{
		books: books,
		users: make(map[string]domain.User),
	}
}

func (s *Store) ListBooks(_ context.Context) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	return out, nil
}

func (s *Store) BookByISBN(_ context.Context, isbn string) (domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return domain.Book{}, storage.ErrNotFound
}

func (s *Store) BookByID(_ context.Context, id int) (domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.books[i], nil
	}
	return domain.Book{}, storage.ErrNotFound
}

func (s *Store) BooksByAuthor(_ context.Context, author string) ([]domain.Book, error) {
	return s.filter(func(b domain.Book) bool { return b.Author == author }), nil
}

func (s *Store) BooksByTitle(_ context.Context, title string) ([]domain.Book, error) {
	return s.filter(func(b domain.Book) bool { return b.Title == title }), nil
}

func (s *Store) UpdateReview(_ context.Context, id int, review string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return storage.ErrNotFound
	}
	s.books[i].Review = review
	return nil
}

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return storage.ErrConflict
	}
	s.users[u.Username] = u
	return nil
}

func (s *Store) UserByName(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return domain.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) Close() error { return nil }

// filter always returns a non-nil slice so handlers encode [] rather than null.
func (s *Store) filter(match func(domain.Book) bool) []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Book, 0)
	for _, b := range s.books {
		if match(b) {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) indexOf(id int) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
