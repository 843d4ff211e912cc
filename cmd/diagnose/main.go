package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"bookshelf/internal/config"
	"bookshelf/internal/health"
	"bookshelf/internal/search"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	timeout := flag.Duration("timeout", 5*time.Second, "overall deadline")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	baseURL := cfg.ServerURL()
	fmt.Println("=== bookshelf diagnostics ===")
	ok := true

	fmt.Printf("\n[1] HTTP API (%s)\n", baseURL)
	ok = checkHTTP(ctx, baseURL) && ok

	if cfg.GRPC.Enabled {
		fmt.Printf("\n[2] gRPC health (%s)\n", cfg.GRPC.DialAddress())
		ok = checkGRPC(ctx, cfg.GRPC.DialAddress()) && ok
	} else {
		fmt.Println("\n[2] gRPC health: disabled, skipped")
	}

	fmt.Println("\n=== done ===")
	if !ok {
		os.Exit(1)
	}
}

func checkHTTP(ctx context.Context, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		fmt.Printf("FAIL. bad URL: %v\n", err)
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("FAIL. /healthz: %v\n", err)
		return false
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("FAIL. /healthz returned %d\n", resp.StatusCode)
		return false
	}

	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)
	books, err := search.New(baseURL, nil, log).GetAllBooks(ctx)
	if err != nil {
		fmt.Printf("FAIL. %v\n", err)
		return false
	}
	fmt.Printf("PASS. %d books in catalog\n", len(books))
	return true
}

func checkGRPC(ctx context.Context, addr string) bool {
	resp, err := health.Check(ctx, addr, health.Service)
	if err != nil {
		fmt.Printf("FAIL. %v\n", err)
		return false
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		fmt.Printf("FAIL. %s\n", protojson.Format(resp))
		return false
	}
	fmt.Printf("PASS. %s %s\n", health.Service, protojson.Format(resp))
	return true
}
