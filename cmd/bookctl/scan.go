package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/message"

	"bookshelf/internal/domain"
	"bookshelf/internal/search"
)

// scan lists every book, then fetches each review through the per-book
// review endpoint using a small worker pool.
func (sh *shell) scan(ctx context.Context) error {
	books, err := sh.client.GetAllBooks(ctx)
	if err != nil {
		return err
	}

	threads := sh.threads
	if threads < 1 {
		threads = 1
	}

	bar := progressbar.Default(int64(len(books)), "scanning reviews")
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int32
		reviews  = make(map[int]string, len(books))
	)
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				review, err := sh.client.GetReview(ctx, books[idx].ID)
				if err != nil {
					atomic.AddInt32(&failures, 1)
				} else {
					mu.Lock()
					reviews[books[idx].ID] = review
					mu.Unlock()
				}
				_ = bar.Add(1)
			}
		}()
	}
	for i := range books {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	_ = bar.Finish()
	fmt.Fprintln(sh.out)

	reviewed := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if r := reviews[b.ID]; r != "" {
			b.Review = r
			reviewed = append(reviewed, b)
		}
	}
	if len(reviewed) > 0 {
		renderTable(sh.out, sh.p, search.NewResult(reviewed))
	}
	sh.p.Fprintf(sh.out, "\n%d of %d books reviewed", len(reviewed), len(books))
	if n := atomic.LoadInt32(&failures); n > 0 {
		sh.p.Fprintf(sh.out, ", %d failed", n)
	}
	fmt.Fprintln(sh.out)
	return nil
}

func renderTable(w io.Writer, p *message.Printer, res *search.SearchResult) {
	if res.Total == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTitle\tAuthor\tISBN\tReview")
	for _, b := range res.Books {
		p.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.ISBN, truncate(b.Review, 40))
	}
	_ = tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
