// Package search is an HTTP client for a running bookshelf server. It is
// used by command line tools and must never be called from inside a request
// handler of the server it points at.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"bookshelf/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// StatusOf reports the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

// New returns a client for baseURL. A nil hc means http.DefaultClient; no
// timeout or retry is added on top of it.
func New(baseURL string, hc *http.Client, log *logrus.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		log:     log,
	}
}

func (c *Client) GetAllBooks(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.do(ctx, http.MethodGet, "/books", nil, &books); err != nil {
		c.log.WithError(err).Error("search.GetAllBooks")
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}
	return books, nil
}

func (c *Client) SearchByISBN(ctx context.Context, isbn string) (domain.Book, error) {
	var book domain.Book
	if err := c.do(ctx, http.MethodGet, "/books/"+url.PathEscape(isbn), nil, &book); err != nil {
		c.log.WithError(err).WithField("isbn", isbn).Error("search.SearchByISBN")
		return domain.Book{}, fmt.Errorf("failed to fetch book by ISBN: %w", err)
	}
	return book, nil
}

func (c *Client) SearchByAuthor(ctx context.Context, author string) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.do(ctx, http.MethodGet, "/books/author/"+url.PathEscape(author), nil, &books); err != nil {
		c.log.WithError(err).WithField("author", author).Error("search.SearchByAuthor")
		return nil, fmt.Errorf("failed to fetch books by author: %w", err)
	}
	return books, nil
}

func (c *Client) SearchByTitle(ctx context.Context, title string) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.do(ctx, http.MethodGet, "/books/title/"+url.PathEscape(title), nil, &books); err != nil {
		c.log.WithError(err).WithField("title", title).Error("search.SearchByTitle")
		return nil, fmt.Errorf("failed to fetch books by title: %w", err)
	}
	return books, nil
}

func (c *Client) GetReview(ctx context.Context, id int) (string, error) {
	var resp struct {
		Review string `json:"review"`
	}
	if err := c.do(ctx, http.MethodGet, reviewPath(id), nil, &resp); err != nil {
		c.log.WithError(err).WithField("id", id).Error("search.GetReview")
		return "", fmt.Errorf("failed to fetch review: %w", err)
	}
	return resp.Review, nil
}

// AddReview replaces the review of book id and returns the server message.
func (c *Client) AddReview(ctx context.Context, id int, text string) (string, error) {
	var resp message
	body := map[string]string{"review": text}
	if err := c.do(ctx, http.MethodPost, reviewPath(id), body, &resp); err != nil {
		c.log.WithError(err).WithField("id", id).Error("search.AddReview")
		return "", fmt.Errorf("failed to add review: %w", err)
	}
	return resp.Message, nil
}

func (c *Client) DeleteReview(ctx context.Context, id int) (string, error) {
	var resp message
	if err := c.do(ctx, http.MethodDelete, reviewPath(id), nil, &resp); err != nil {
		c.log.WithError(err).WithField("id", id).Error("search.DeleteReview")
		return "", fmt.Errorf("failed to delete review: %w", err)
	}
	return resp.Message, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var resp message
	if err := c.do(ctx, http.MethodPost, "/register", credentials{username, password}, &resp); err != nil {
		c.log.WithError(err).WithField("username", username).Error("search.Register")
		return "", fmt.Errorf("failed to register: %w", err)
	}
	return resp.Message, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp message
	if err := c.do(ctx, http.MethodPost, "/login", credentials{username, password}, &resp); err != nil {
		c.log.WithError(err).WithField("username", username).Error("search.Login")
		return "", fmt.Errorf("failed to log in: %w", err)
	}
	return resp.Message, nil
}

type message struct {
	Message string `json:"message"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func reviewPath(id int) string {
	return "/books/" + strconv.Itoa(id) + "/reviews"
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if c.log.IsLevelEnabled(logrus.DebugLevel) {
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": res.StatusCode,
		}).Debug("search.response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return &APIError{Status: res.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
