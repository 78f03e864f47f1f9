package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ttech-shop/internal/auth"
	"ttech-shop/internal/core/config"
	"ttech-shop/internal/core/database"
	"ttech-shop/internal/core/logger"
	"ttech-shop/internal/core/server"
	"ttech-shop/internal/store"
	"ttech-shop/internal/transport/http/router"
)

// 后台端独立进程。注意：store.driver=memory 时与用户端不共享数据，
// 后台运营需要共享存储（mysql/postgres + redis 会话）才有意义。
func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := buildLogger(cfg)
	defer cleanup()

	st := mustOpenStore(cfg, log)
	if err := store.Seed(st, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, log); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}

	sessions := buildSessions(cfg, log)
	svc := auth.NewService(st, sessions, log)

	r := router.NewAdminEngine(router.Deps{
		Log:          log,
		Store:        st,
		Auth:         svc,
		SecureCookie: cfg.App.Env == "prod",
	})

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}

func buildLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File == "" {
		return logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Enable:     true,
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}

func mustOpenStore(cfg *config.Config, l *zap.Logger) store.Store {
	switch cfg.Store.Driver {
	case "", "memory":
		l.Info("store: in-memory (volatile)")
		return store.NewMemoryStore()
	case "mysql", "postgres":
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.Store.Driver,
			DSN:                cfg.Store.DSN,
			MaxOpenConns:       cfg.Store.MaxOpenConns,
			MaxIdleConns:       cfg.Store.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.Store.ConnMaxLifetimeMin,
			LogLevel:           cfg.Store.LogLevel,
		})
		if err != nil {
			l.Fatal("db open", zap.Error(err))
		}
		gs, err := store.NewGormStore(db)
		if err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("store: database connected", zap.String("driver", cfg.Store.Driver))
		return gs
	default:
		l.Fatal("unknown store driver", zap.String("driver", cfg.Store.Driver))
		return nil
	}
}

func buildSessions(cfg *config.Config, l *zap.Logger) store.SessionStore {
	ttl := time.Duration(cfg.Auth.SessionTTLDays) * 24 * time.Hour
	switch cfg.Auth.Sessions {
	case "", "memory":
		return store.NewMemorySessions(ttl)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewRedisSessions(rdb, ttl)
	case "jwt":
		if cfg.Auth.JWTSecret == "" {
			l.Fatal("auth.jwtsecret required for jwt sessions")
		}
		return store.NewJWTSessions([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer, ttl)
	default:
		l.Fatal("unknown session backend", zap.String("sessions", cfg.Auth.Sessions))
		return nil
	}
}
