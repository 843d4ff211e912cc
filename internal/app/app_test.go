package app_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"bookshelf/internal/app"
	"bookshelf/internal/config"
	"bookshelf/internal/health"
	"bookshelf/internal/middleware"
	"bookshelf/internal/search"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newApp(t *testing.T, mutate func(*config.Config)) *app.App {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := app.New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestApp_Drivers(t *testing.T) {
	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			a := newApp(t, func(c *config.Config) { c.Storage.Driver = driver })
			ts := httptest.NewServer(a.Router)
			defer ts.Close()

			c := search.New(ts.URL, ts.Client(), quietLogger())
			ctx := context.Background()

			books, err := c.GetAllBooks(ctx)
			require.NoError(t, err)
			assert.Len(t, books, 10)

			_, err = c.AddReview(ctx, 4, "Chilling")
			require.NoError(t, err)
			book, err := c.SearchByISBN(ctx, "ISBN 4567890123")
			require.NoError(t, err)
			assert.Equal(t, "Chilling", book.Review)
		})
	}
}

func TestApp_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "postgres"
	_, err := app.New(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}

func TestApp_MiddlewareChain(t *testing.T) {
	a := newApp(t, func(c *config.Config) {
		c.Reviews.Sanitize = "strict"
		c.RateLimit.RPS = 0.001
		c.RateLimit.Burst = 3
	})

	req := httptest.NewRequest(http.MethodPost, "/books/5/reviews", strings.NewReader(`{"review":"<i>meh</i>"}`))
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/5/reviews", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"review":"meh"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return lis
}

func TestApp_ServeAndShutdown(t *testing.T) {
	a := newApp(t, func(c *config.Config) { c.GRPC.Enabled = true })
	require.NotNil(t, a.Health)

	httpLis, grpcLis := listen(t), listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, httpLis, grpcLis) }()

	base := "http://" + httpLis.Addr().String()
	require.Eventually(t, func() bool {
		res, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	checkCtx, checkCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer checkCancel()
	require.Eventually(t, func() bool {
		resp, err := health.Check(checkCtx, grpcLis.Addr().String(), health.Service)
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err := http.Get(base + "/healthz")
	assert.Error(t, err)
}
