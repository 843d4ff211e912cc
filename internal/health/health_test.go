package health_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"bookshelf/internal/health"
)

func startServer(t *testing.T) (*health.Server, grpc.DialOption) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	lis := bufconn.Listen(1 << 20)
	srv := health.New(log)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(lis) }()
	t.Cleanup(func() {
		srv.Stop()
		assert.NoError(t, <-done)
	})

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	return srv, dialer
}

func TestHealth_ServingLifecycle(t *testing.T) {
	srv, dialer := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := health.Check(ctx, "passthrough:///bufnet", health.Service, dialer)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	srv.SetServing(true)
	for _, svc := range []string{"", health.Service} {
		resp, err = health.Check(ctx, "passthrough:///bufnet", svc, dialer)
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus(), svc)
	}
}

func TestHealth_UnknownService(t *testing.T) {
	_, dialer := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := health.Check(ctx, "passthrough:///bufnet", "no.such.Service", dialer)
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
