package di

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/app"
	"github.com/polkiloo/vpndash/internal/config"
	"github.com/polkiloo/vpndash/internal/domain/repository"
	"github.com/polkiloo/vpndash/internal/storage/postgres"
	"github.com/polkiloo/vpndash/internal/test"
	"github.com/polkiloo/vpndash/internal/worker"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:      ":0",
		APIBase:         "http://localhost/api",
		PublicURL:       "http://localhost:8080",
		DatabaseURI:     "postgres://stub",
		StateSecret:     "secret",
		RememberMeTTL:   time.Hour,
		PollInterval:    time.Millisecond,
		PollMaxAttempts: 3,
		TrackerInterval: time.Millisecond,
		TrackerBatch:    1,
		WorkerPoolSize:  1,
		RequestTimeout:  time.Second,
		ShutdownTimeout: time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var (
		facade  *app.DashboardFacade
		engine  *gin.Engine
		server  *http.Server
		tracker *worker.ProvisioningTracker
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.PurchaseRepository(test.NewPurchaseRepositoryStub())),
			fx.Replace(repository.PlanCache(&test.PlanCacheStub{})),
		),
		fx.Populate(&facade, &engine, &server, &tracker),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || engine == nil || tracker == nil {
		t.Fatal("expected dashboard components to be built")
	}
	if server.Handler != engine {
		t.Fatal("expected server to serve the router")
	}
}
