// GreenPrompt — LLM prompt energy, carbon and cost estimation service.
// Entry point: CLI commands plus the HTTP server wiring.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saad2134/greenprompt/internal/api"
	"github.com/saad2134/greenprompt/internal/config"
	"github.com/saad2134/greenprompt/internal/db"
	"github.com/saad2134/greenprompt/internal/limiter"
	"github.com/saad2134/greenprompt/internal/notify"
	"github.com/saad2134/greenprompt/internal/scheduler"
	"github.com/saad2134/greenprompt/internal/telegram"
	"github.com/saad2134/greenprompt/internal/ws"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "greenprompt",
		Short:   "GreenPrompt — LLM prompt energy and carbon estimation service",
		Version: Version,
	}

	root.AddCommand(
		newServeCmd(),
		newAPIKeyCmd(),
		newModelsCmd(),
		newSetupCmd(),
	)

	// Bare invocation starts the server, matching the daemon habit.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	log.Printf("GreenPrompt %s starting…", Version)

	// ── 1. Load configuration ────────────────────────────────────────────────
	cfg := config.Load()
	log.Printf("Config: port=%s db=%s region=%s", cfg.Port, cfg.DBPath, cfg.DefaultRegion)

	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		log.Println("⚠  No .env found — using built-in defaults")
		log.Println("   Run 'greenprompt setup' to configure before going to production.")
	}

	// ── 2. Open database + migrate ───────────────────────────────────────────
	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("db.New: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("db.Migrate: %w", err)
	}
	log.Printf("Database ready: %s", cfg.DBPath)

	// Root context — cancelled on shutdown signal.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 3. WebSocket hub ─────────────────────────────────────────────────────
	hub := ws.NewHub()
	go hub.Run(ctx)

	// ── 4. Telegram + notifier ───────────────────────────────────────────────
	bot, err := telegram.New(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("Telegram init error (continuing without Telegram): %v", err)
	}
	notifier := notify.New(telegramSender(bot))

	// ── 5. Rate limiter ──────────────────────────────────────────────────────
	rl := limiter.New(10000, 10*time.Minute)

	// ── 6. Cron scheduler ────────────────────────────────────────────────────
	schedEngine := scheduler.New(database, notifier, cfg.RetentionDays)
	if err := schedEngine.Start(ctx); err != nil {
		log.Printf("scheduler.Start: %v", err)
	}

	// ── 7. HTTP router ───────────────────────────────────────────────────────
	mux := http.NewServeMux()
	api.SetupRoutes(mux, &api.Deps{
		DB:      database,
		Config:  cfg,
		Hub:     hub,
		Limiter: rl,
	})

	handler := loggingMiddleware(recoveryMiddleware(mux))

	// ── 8. Start HTTP server ─────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received %s — shutting down…", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
	}()

	log.Printf("GreenPrompt listening on http://0.0.0.0:%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	log.Printf("GreenPrompt stopped.")
	return nil
}

// loggingMiddleware logs each request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				log.Printf("panic: %v", rv)
				http.Error(w, `{"success":false,"error":"internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// telegramSender wraps *telegram.Bot to implement notify.Sender.
// Returns nil if bot is nil (Telegram disabled).
func telegramSender(bot *telegram.Bot) notify.Sender {
	if bot == nil {
		return nil
	}
	return bot
}
