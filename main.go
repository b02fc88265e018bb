package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hyeonkim-dev/docintake/api"
	"github.com/hyeonkim-dev/docintake/auth"
	"github.com/hyeonkim-dev/docintake/intake"
	"github.com/hyeonkim-dev/docintake/jobstore"
	"github.com/hyeonkim-dev/docintake/registry"
	"github.com/hyeonkim-dev/docintake/storage"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/userstore"
	"github.com/hyeonkim-dev/docintake/vision"
)

func main() {
	cfg := tool.SetFlags()

	// .env is optional; real deployments pass secrets through the environment
	_ = godotenv.Load()

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if cfg.UsePort > 0 {
		appCfg.Port = cfg.UsePort
	}

	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	ctx := context.Background()

	store, err := storage.NewMinioStore(ctx, appCfg.Storage)
	if err != nil {
		tool.DefaultLogger.Fatalf("Failed to connect object storage: %v", err)
	}

	users, err := userstore.OpenPostgres(appCfg.Postgres)
	if err != nil {
		tool.DefaultLogger.Fatalf("Failed to connect postgres: %v", err)
	}

	var (
		reg  registry.Registry
		jobs jobstore.Store
	)
	if appCfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.Redis.Addr,
			Password: appCfg.Redis.Password,
			DB:       appCfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			tool.DefaultLogger.Fatalf("Failed to connect redis: %v", err)
		}
		reg = registry.NewRedisRegistry(rdb)
		jobs = jobstore.NewRedisStore(rdb)
		tool.DefaultLogger.Infof("Using redis at %s for connections and jobs", appCfg.Redis.Addr)
	} else {
		reg = registry.NewMemoryRegistry()
		jobs = jobstore.NewMemoryStore()
		tool.DefaultLogger.Warn("No redis configured, connection and job state is in-memory only")
	}

	model := vision.NewOpenAIClient(appCfg.Vision)
	tokens := auth.NewTokenService(appCfg.Auth)

	hub := intake.NewHub(reg)
	broker := intake.NewProgressBroker()
	pipeline := intake.NewPipeline(store, model, jobs, hub, appCfg.Limits)
	router := intake.NewRouter(pipeline, jobs, hub)

	server := api.NewServer(appCfg.Port, api.Deps{
		Users:    users,
		Tokens:   tokens,
		Hub:      hub,
		Router:   router,
		Pipeline: pipeline,
		Jobs:     jobs,
		Registry: reg,
		Broker:   broker,
		Limits:   appCfg.Limits,
	})

	go func() {
		if err := server.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	tool.DefaultLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		tool.DefaultLogger.Errorf("Shutdown error: %v", err)
	}
}
