package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"bookshelf/internal/app"
	"bookshelf/internal/config"
	"bookshelf/internal/logger"
)

func main() {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	log, closer, err := logger.Setup(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Path:  cfg.Log.Path,
	})
	if err != nil {
		logrus.WithError(err).Fatal("logger")
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, *cfg, log)
	if err != nil {
		log.WithError(err).Fatal("init")
	}
	defer a.Close()

	log.WithFields(logrus.Fields{
		"http":    cfg.HTTP.FullURL(),
		"storage": cfg.Storage.Driver,
		"grpc":    cfg.GRPC.Enabled,
	}).Info("bookshelf starting")

	if err := a.Run(ctx); err != nil {
		log.WithError(err).Error("server stopped")
		a.Close()
		closer.Close()
		os.Exit(1)
	}
	log.Info("bookshelf stopped")
}
