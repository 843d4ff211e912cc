// Package sqlite is a database/sql backed implementation of the book and
// user stores. The default DSN is an in-memory database, so nothing outlives
// the process unless a file DSN is configured.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // driver registration

	"bookshelf/internal/domain"
	"bookshelf/internal/storage"
)

const (
	driverName = "sqlite"
	dialect    = "sqlite3"

	tableBooks = "books"
	tableUsers = "users"

	colID       = "id"
	colTitle    = "title"
	colAuthor   = "author"
	colISBN     = "isbn"
	colReview   = "review"
	colUsername = "username"
	colPassword = "password"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id     INTEGER PRIMARY KEY,
		title  TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn   TEXT NOT NULL UNIQUE,
		review TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL
	)`,
}

type Store struct {
	db *sqlx.DB
}

// Open connects to dsn, creates the schema and seeds the books table when it
// is empty. The pool is pinned to one connection: an in-memory database lives
// and dies with its connection, and it also serialises writers.
func Open(ctx context.Context, dsn string, seed []domain.Book) (*Store, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.seed(ctx, seed); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) seed(ctx context.Context, books []domain.Book) error {
	if len(books) == 0 {
		return nil
	}
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM books"); err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if n > 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(books))
	for _, b := range books {
		rows = append(rows, goqu.Record{
			colID:     b.ID,
			colTitle:  b.Title,
			colAuthor: b.Author,
			colISBN:   b.ISBN,
			colReview: b.Review,
		})
	}
	query, args, err := goqu.Dialect(dialect).Insert(tableBooks).Rows(rows...).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build seed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed books: %w", err)
	}
	return nil
}

func selectBooks() *goqu.SelectDataset {
	return goqu.Dialect(dialect).
		From(tableBooks).
		Select(colID, colTitle, colAuthor, colISBN, colReview).
		Order(goqu.C(colID).Asc())
}

func (s *Store) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.selectMany(ctx, selectBooks())
}

func (s *Store) BooksByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	return s.selectMany(ctx, selectBooks().Where(goqu.C(colAuthor).Eq(author)))
}

func (s *Store) BooksByTitle(ctx context.Context, title string) ([]domain.Book, error) {
	return s.selectMany(ctx, selectBooks().Where(goqu.C(colTitle).Eq(title)))
}

func (s *Store) BookByISBN(ctx context.Context, isbn string) (domain.Book, error) {
	return s.selectOne(ctx, selectBooks().Where(goqu.C(colISBN).Eq(isbn)))
}

func (s *Store) BookByID(ctx context.Context, id int) (domain.Book, error) {
	return s.selectOne(ctx, selectBooks().Where(goqu.C(colID).Eq(id)))
}

func (s *Store) UpdateReview(ctx context.Context, id int, review string) error {
	query, args, err := goqu.Dialect(dialect).
		Update(tableBooks).
		Set(goqu.Record{colReview: review}).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateUser checks and inserts inside one transaction.
func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := goqu.Dialect(dialect).
		From(tableUsers).
		Select(goqu.COUNT(colUsername)).
		Where(goqu.C(colUsername).Eq(u.Username)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lookup: %w", err)
	}
	var n int
	if err := tx.GetContext(ctx, &n, query, args...); err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if n > 0 {
		return storage.ErrConflict
	}

	query, args, err = goqu.Dialect(dialect).
		Insert(tableUsers).
		Rows(goqu.Record{colUsername: u.Username, colPassword: u.Password}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return tx.Commit()
}

func (s *Store) UserByName(ctx context.Context, username string) (domain.User, error) {
	query, args, err := goqu.Dialect(dialect).
		From(tableUsers).
		Select(colUsername, colPassword).
		Where(goqu.C(colUsername).Eq(username)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return domain.User{}, fmt.Errorf("build lookup: %w", err)
	}
	var u domain.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, storage.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func (s *Store) selectMany(ctx context.Context, ds *goqu.SelectDataset) ([]domain.Book, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	books := make([]domain.Book, 0)
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	return books, nil
}

func (s *Store) selectOne(ctx context.Context, ds *goqu.SelectDataset) (domain.Book, error) {
	query, args, err := ds.Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return domain.Book{}, fmt.Errorf("build select: %w", err)
	}
	var b domain.Book
	if err := s.db.GetContext(ctx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, storage.ErrNotFound
		}
		return domain.Book{}, fmt.Errorf("select book: %w", err)
	}
	return b, nil
}
