package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bookshelf/internal/config"
	"bookshelf/internal/domain"
	"bookshelf/internal/logger"
	"bookshelf/internal/parser"
	"bookshelf/internal/search"
)

const historyFile = ".bookctl_history"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	baseURL := flag.String("url", cfg.ServerURL(), "bookshelf server base URL")
	threads := flag.Int("threads", 4, "parallel requests used by scan")
	lang := flag.String("lang", "en", "language tag for number formatting")
	verbose := flag.Bool("v", false, "log client requests")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, _, err := logger.Setup(logger.Options{Level: level})
	if err != nil {
		logrus.WithError(err).Fatal("logger")
	}
	// stdout is for results
	log.SetOutput(os.Stderr)

	tag, err := language.Parse(*lang)
	if err != nil {
		tag = language.English
	}

	sh := &shell{
		client:  search.New(*baseURL, nil, log),
		out:     os.Stdout,
		p:       message.NewPrinter(tag),
		threads: *threads,
	}

	if flag.NArg() > 0 {
		if err := sh.execute(context.Background(), strings.Join(flag.Args(), " ")); err != nil && !errors.Is(err, errExit) {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}
	sh.repl()
}

var errExit = errors.New("exit")

type shell struct {
	client  *search.Client
	out     io.Writer
	p       *message.Printer
	threads int
}

func (sh *shell) repl() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	hist := historyPath()
	if f, err := os.Open(hist); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(hist); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(sh.out, "bookshelf shell. Type help for commands.")
	for {
		input, err := line.Prompt("bookshelf> ")
		if err != nil {
			// liner.ErrPromptAborted on ^C, io.EOF on ^D
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if err := sh.execute(context.Background(), input); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			fmt.Fprintln(sh.out, "error:", err)
		}
	}
}

func (sh *shell) execute(ctx context.Context, input string) error {
	q, err := parser.Parse(input)
	if err != nil {
		return err
	}

	start := time.Now()
	switch q.Kind {
	case parser.KindExit:
		return errExit
	case parser.KindHelp:
		fmt.Fprint(sh.out, helpText)
		return nil
	case parser.KindScan:
		return sh.scan(ctx)
	case parser.KindReview:
		review, err := sh.client.GetReview(ctx, q.BookID)
		if err != nil {
			return err
		}
		if review == "" {
			review = "(no review)"
		}
		sh.p.Fprintf(sh.out, "Book %d: %s\n", q.BookID, review)
		return nil
	case parser.KindSetReview:
		return sh.report(sh.client.AddReview(ctx, q.BookID, q.Value))
	case parser.KindClearReview:
		return sh.report(sh.client.DeleteReview(ctx, q.BookID))
	case parser.KindRegister:
		return sh.report(sh.client.Register(ctx, q.Username, q.Password))
	case parser.KindLogin:
		return sh.report(sh.client.Login(ctx, q.Username, q.Password))
	}

	res, err := sh.lookup(ctx, q)
	if err != nil {
		return err
	}
	renderTable(sh.out, sh.p, res)
	sh.p.Fprintf(sh.out, "\n%d book(s) in %v\n\n", res.Total, time.Since(start).Round(time.Millisecond))
	return nil
}

// report prints the server's confirmation message.
func (sh *shell) report(msg string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, msg)
	return nil
}

func (sh *shell) lookup(ctx context.Context, q parser.Query) (*search.SearchResult, error) {
	switch q.Kind {
	case parser.KindISBN:
		b, err := sh.client.SearchByISBN(ctx, q.Value)
		if err != nil {
			return nil, err
		}
		return search.NewResult([]domain.Book{b}), nil
	case parser.KindAuthor:
		books, err := sh.client.SearchByAuthor(ctx, q.Value)
		if err != nil {
			return nil, err
		}
		return search.NewResult(books), nil
	case parser.KindTitle:
		books, err := sh.client.SearchByTitle(ctx, q.Value)
		if err != nil {
			return nil, err
		}
		return search.NewResult(books), nil
	}
	books, err := sh.client.GetAllBooks(ctx)
	if err != nil {
		return nil, err
	}
	return search.NewResult(books), nil
}

func complete(line string) []string {
	var out []string
	for _, c := range []string{"list", "scan", "help", "exit", "register", "login", "isbn:", "author:", "title:", "review:", "unreview:"} {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}
	return out
}

func historyPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, historyFile)
	}
	return historyFile
}

const helpText = `Commands:
  list                      all books
  isbn:"ISBN 1234567890"    book by exact ISBN
  author:Jane Austen        books by exact author
  title:1984                books by exact title
  review:3                  review of book 3
  review:3 = Great book     replace the review of book 3
  unreview:3                clear the review of book 3
  register <user> <pw>      create an account (quote values with spaces)
  login <user> <pw>         check credentials
  scan                      fetch every review and summarize
  help                      this text
  exit                      leave the shell
`
