// Package catalog serves the book list and the single review each book
// carries.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"bookshelf/internal/domain"
	"bookshelf/internal/logger"
	"bookshelf/internal/metrics"
	"bookshelf/internal/storage"
)

// Store is the book persistence the catalog needs. List methods return an
// empty, non-nil slice when nothing matches.
type Store interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	BookByISBN(ctx context.Context, isbn string) (domain.Book, error)
	BookByID(ctx context.Context, id int) (domain.Book, error)
	BooksByAuthor(ctx context.Context, author string) ([]domain.Book, error)
	BooksByTitle(ctx context.Context, title string) ([]domain.Book, error)
	UpdateReview(ctx context.Context, id int, review string) error
}

// Sanitizer rewrites review text before it is stored.
type Sanitizer interface {
	Sanitize(s string) string
}

type Service struct {
	store     Store
	sanitizer Sanitizer
}

type Option func(*Service)

func WithSanitizer(s Sanitizer) Option {
	return func(svc *Service) { svc.sanitizer = s }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SanitizerFor maps a policy name to a bluemonday policy. "none" and ""
// yield nil, meaning reviews are stored verbatim.
func SanitizerFor(policy string) (Sanitizer, error) {
	switch policy {
	case "", "none":
		return nil, nil
	case "strict":
		return bluemonday.StrictPolicy(), nil
	case "ugc":
		return bluemonday.UGCPolicy(), nil
	}
	return nil, fmt.Errorf("unknown sanitize policy %q", policy)
}

func (s *Service) ListBooks(ctx context.Context) ([]domain.Book, error) {
	defer logger.Track(ctx, "catalog.ListBooks")()
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *Service) GetByISBN(ctx context.Context, isbn string) (domain.Book, error) {
	defer logger.Track(ctx, "catalog.GetByISBN")()
	b, err := s.store.BookByISBN(ctx, isbn)
	if err != nil {
		return domain.Book{}, notFound(err, "get book by isbn")
	}
	return b, nil
}

func (s *Service) ListByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	defer logger.Track(ctx, "catalog.ListByAuthor")()
	books, err := s.store.BooksByAuthor(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("list books by author: %w", err)
	}
	return books, nil
}

func (s *Service) ListByTitle(ctx context.Context, title string) ([]domain.Book, error) {
	defer logger.Track(ctx, "catalog.ListByTitle")()
	books, err := s.store.BooksByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("list books by title: %w", err)
	}
	return books, nil
}

func (s *Service) GetReview(ctx context.Context, id int) (string, error) {
	defer logger.Track(ctx, "catalog.GetReview")()
	b, err := s.store.BookByID(ctx, id)
	if err != nil {
		return "", notFound(err, "get review")
	}
	return b.Review, nil
}

// SetReview replaces the book's review. There is one review per book and no
// authorship, so the last writer wins.
func (s *Service) SetReview(ctx context.Context, id int, text string) error {
	defer logger.Track(ctx, "catalog.SetReview")()
	if s.sanitizer != nil {
		text = s.sanitizer.Sanitize(text)
	}
	err := s.store.UpdateReview(ctx, id, text)
	metrics.ReviewWrites.WithLabelValues("set", outcome(err)).Inc()
	if err != nil {
		return notFound(err, "set review")
	}
	return nil
}

// ClearReview empties the book's review. Clearing an empty review succeeds.
func (s *Service) ClearReview(ctx context.Context, id int) error {
	defer logger.Track(ctx, "catalog.ClearReview")()
	err := s.store.UpdateReview(ctx, id, "")
	metrics.ReviewWrites.WithLabelValues("clear", outcome(err)).Inc()
	if err != nil {
		return notFound(err, "clear review")
	}
	return nil
}

func notFound(err error, op string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrBookNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	}
	return "error"
}
