package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"bookshelf/internal/domain"
	"bookshelf/internal/logger"
	"bookshelf/internal/metrics"
	"bookshelf/internal/middleware"
)

// Response messages are part of the public API; clients match on them.
const (
	msgBookNotFound       = "Book not found"
	msgUsernameTaken      = "Username already exists"
	msgInvalidCredentials = "Invalid username or password"
	msgRegistered         = "User registered successfully"
	msgLoggedIn           = "Login successful"
	msgReviewAdded        = "Review added successfully"
	msgReviewDeleted      = "Review deleted successfully"
	msgInternal           = "internal error"
)

type Catalog interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	GetByISBN(ctx context.Context, isbn string) (domain.Book, error)
	ListByAuthor(ctx context.Context, author string) ([]domain.Book, error)
	ListByTitle(ctx context.Context, title string) ([]domain.Book, error)
	GetReview(ctx context.Context, id int) (string, error)
	SetReview(ctx context.Context, id int, text string) error
	ClearReview(ctx context.Context, id int) error
}

type Directory interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
}

type Server struct {
	Log      *logrus.Logger
	Catalog  Catalog
	Accounts Directory
}

// Router registers every route. Order matters: the literal author/ and
// title/ segments must win over the {isbn} and {id} captures.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Use(middleware.Instrument)

	r.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// every API route also answers with a trailing slash
	route := func(path, method string, h http.HandlerFunc) {
		r.HandleFunc(path, h).Methods(method)
		r.HandleFunc(path+"/", h).Methods(method)
	}
	route("/books", http.MethodGet, s.ListBooks)
	route("/books/author/{author}", http.MethodGet, s.BooksByAuthor)
	route("/books/title/{title}", http.MethodGet, s.BooksByTitle)
	route("/books/{id}/reviews", http.MethodGet, s.GetReview)
	route("/books/{id}/reviews", http.MethodPost, s.SetReview)
	route("/books/{id}/reviews", http.MethodDelete, s.DeleteReview)
	route("/books/{isbn}", http.MethodGet, s.BookByISBN)

	route("/register", http.MethodPost, s.Register)
	route("/login", http.MethodPost, s.Login)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /books
func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.Catalog.ListBooks(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GET /books/{isbn}
func (s *Server) BookByISBN(w http.ResponseWriter, r *http.Request) {
	book, err := s.Catalog.GetByISBN(r.Context(), mux.Vars(r)["isbn"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// GET /books/author/{author}
func (s *Server) BooksByAuthor(w http.ResponseWriter, r *http.Request) {
	books, err := s.Catalog.ListByAuthor(r.Context(), mux.Vars(r)["author"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GET /books/title/{title}
func (s *Server) BooksByTitle(w http.ResponseWriter, r *http.Request) {
	books, err := s.Catalog.ListByTitle(r.Context(), mux.Vars(r)["title"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GET /books/{id}/reviews
func (s *Server) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgBookNotFound)
		return
	}
	review, err := s.Catalog.GetReview(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"review": review})
}

// POST /books/{id}/reviews  body: {"review": "..."}
func (s *Server) SetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgBookNotFound)
		return
	}
	var body reviewRequest
	if err := decodeBody(r, reviewSchema, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Catalog.SetReview(r.Context(), id, body.Review); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgReviewAdded})
}

// DELETE /books/{id}/reviews
//
// Clears the book's only review whoever wrote it; reviews carry no author.
func (s *Server) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgBookNotFound)
		return
	}
	if err := s.Catalog.ClearReview(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgReviewDeleted})
}

// POST /register  body: {"username": "...", "password": "..."}
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := decodeBody(r, credentialsSchema, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Accounts.Register(r.Context(), body.Username, body.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: msgRegistered})
}

// POST /login  body: {"username": "...", "password": "..."}
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := decodeBody(r, credentialsSchema, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Accounts.Login(r.Context(), body.Username, body.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgLoggedIn})
}

// fail maps domain errors to their status and message; anything else is
// logged and reported as a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		writeError(w, http.StatusNotFound, msgBookNotFound)
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, msgUsernameTaken)
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	default:
		s.Log.WithFields(logrus.Fields{
			"request_id": logger.IDFrom(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("http.handler.failed")
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// bookID reads the {id} segment like a lenient integer parse: optional
// leading spaces and sign, then the leading run of digits. "1abc" and "1.0"
// name book 1; a segment with no leading digits names no book.
func bookID(r *http.Request) (int, bool) {
	return leadingInt(mux.Vars(r)["id"])
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
