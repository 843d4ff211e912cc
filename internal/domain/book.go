package domain

import "errors"

// Book is a catalog entry. Only Review changes after startup.
type Book struct {
	ID     int    `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	ISBN   string `json:"isbn" db:"isbn"`
	Review string `json:"review" db:"review"`
}

var ErrBookNotFound = errors.New("book not found")

// SeedBooks returns the fixed catalog the service starts with.
func SeedBooks() []Book {
	return []Book{
		{ID: 1, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "ISBN 1234567890"},
		{ID: 2, Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "ISBN 2345678901"},
		{ID: 3, Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "ISBN 3456789012"},
		{ID: 4, Title: "1984", Author: "George Orwell", ISBN: "ISBN 4567890123"},
		{ID: 5, Title: "The Catcher in the Rye", Author: "J.D. Salinger", ISBN: "ISBN 5678901234"},
		{ID: 6, Title: "To the Lighthouse", Author: "Virginia Woolf", ISBN: "ISBN 6789012345"},
		{ID: 7, Title: "Moby-Dick", Author: "Herman Melville", ISBN: "ISBN 7890123456"},
		{ID: 8, Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", ISBN: "ISBN_8901234567"},
		{ID: 9, Title: "Brave New World", Author: "Aldous Huxley", ISBN: "ISBN 9012345678"},
		{ID: 10, Title: "The Odyssey", Author: "Homer", ISBN: "ISBN 0123456789"},
	}
}
