// Package main starts the mock iTunes Connect backend, useful for trying
// tfinvite locally without touching the real service.
package main

import (
	"cmp"
	"flag"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itckit/tfinvite/internal/itcmock"
	"github.com/itckit/tfinvite/internal/logger"
	"github.com/itckit/tfinvite/internal/models"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	var (
		addr       string
		login      string
		password   string
		serviceKey string
		providerID string
		appID      string
	)
	flag.StringVar(&addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&login, "login", "dev@example.com", "accepted account email")
	flag.StringVar(&password, "password", "hunter2", "accepted account password")
	flag.StringVar(&serviceKey, "service-key", "mock-service-key", "widget key embedded in the login script")
	flag.StringVar(&providerID, "provider-id", "11142800", "content provider id (digits)")
	flag.StringVar(&appID, "app-id", "987654321", "application id")
	flag.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log
	defer func() { _ = zapLogger.Sync() }()

	store := itcmock.NewStore(itcmock.Config{
		Login:      login,
		Password:   password,
		ServiceKey: serviceKey,
		ProviderID: providerID,
		AppID:      appID,
	})
	// Seed one default external group so inference has something to find.
	store.AddGroup(models.Group{
		ID:                     uuid.NewString(),
		Name:                   "External Testers",
		IsDefaultExternalGroup: true,
	})

	router := itcmock.NewRouter(store, zapLogger)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting mock backend", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}
