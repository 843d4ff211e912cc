package search

import "bookshelf/internal/domain"

// BookDTO is a book prepared for terminal rendering.
type BookDTO struct {
	ID     int
	Title  string
	Author string
	ISBN   string
	Review string // "-" when the book has none
}

// SearchResult aggregates the books returned by one query.
type SearchResult struct {
	Total int
	Books []BookDTO
}

func NewResult(books []domain.Book) *SearchResult {
	res := &SearchResult{
		Total: len(books),
		Books: make([]BookDTO, 0, len(books)),
	}
	for _, b := range books {
		review := b.Review
		if review == "" {
			review = "-"
		}
		res.Books = append(res.Books, BookDTO{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			ISBN:   b.ISBN,
			Review: review,
		})
	}
	return res
}
