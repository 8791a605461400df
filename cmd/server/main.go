package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/phishsim/internal/api"
	"github.com/ignite/phishsim/internal/campaign"
	"github.com/ignite/phishsim/internal/config"
	"github.com/ignite/phishsim/internal/dispatch"
	"github.com/ignite/phishsim/internal/event"
	"github.com/ignite/phishsim/internal/lure"
	"github.com/ignite/phishsim/internal/mailer"
	"github.com/ignite/phishsim/internal/token"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("database.url (or DATABASE_URL) is required")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("database ping: %v", err)
	}
	log.Println("Connected to database")

	ctx := context.Background()

	tokens, err := buildTokenStore(cfg.Tokens)
	if err != nil {
		log.Fatalf("token store: %v", err)
	}

	generator := buildGenerator(ctx, cfg.Bedrock)
	sender := buildSender(ctx, cfg.SES)

	campaigns := campaign.NewStore(db)
	recorder := event.NewRecorder(db)
	dispatcher := dispatch.New(campaigns, tokens, generator, sender, dispatch.Options{
		BaseURL:         cfg.Server.BaseURL,
		GenerateTimeout: cfg.Dispatch.GenerateTimeout(),
		SendTimeout:     cfg.Dispatch.SendTimeout(),
	})

	handlers := api.NewHandlers(campaigns, recorder, tokens, dispatcher, generator)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.SetupRoutes(handlers),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // dispatch of a large campaign runs inside one request
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("phishing simulation server listening on %s (base URL %s)", srv.Addr, cfg.Server.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// buildTokenStore selects the token backend. Memory is the default; Redis
// lets several instances resolve each other's tokens.
func buildTokenStore(cfg config.TokenConfig) (token.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		log.Println("Token store: in-memory (tokens lost on restart)")
		return token.NewMemoryStore(), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Printf("Token store: redis (%s, ttl=%s)", opts.Addr, cfg.TTL())
		return token.NewRedisStore(client, cfg.TTL()), nil
	default:
		return nil, fmt.Errorf("unknown token backend %q", cfg.Backend)
	}
}

func buildGenerator(ctx context.Context, cfg config.BedrockConfig) lure.Generator {
	if !cfg.Enabled {
		log.Println("Content generator: static fallback (bedrock disabled)")
		return lure.StaticGenerator{}
	}
	gen, err := lure.NewBedrockGenerator(ctx, lure.BedrockOptions{
		Region:    cfg.Region,
		ModelID:   cfg.ModelID,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	})
	if err != nil {
		log.Printf("Content generator: bedrock init failed (%v), using static fallback", err)
		return lure.StaticGenerator{}
	}
	return gen
}

func buildSender(ctx context.Context, cfg config.SESConfig) mailer.Sender {
	if !cfg.Enabled {
		log.Println("Mail sender: log-only (ses disabled)")
		return mailer.LogSender{}
	}
	sender, err := mailer.NewSESSender(ctx, cfg.AccessKey, cfg.SecretKey, cfg.Region, cfg.FromEmail, cfg.FromName)
	if err != nil {
		log.Printf("Mail sender: SES init failed (%v), using log-only sender", err)
		return mailer.LogSender{}
	}
	return sender
}
