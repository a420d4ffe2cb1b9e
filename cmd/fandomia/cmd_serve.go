package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fandomia/internal/http/handlers"
	"fandomia/internal/repos"
)

var (
	serveRPM          int
	serveLoginAttempt int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend API",
	Long: `Run the backend API on PORT, backed by DB_DSN (a SQLite file or a
postgres:// URL). Accounts and the demo catalog are seeded on start.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveRPM, "rate", 120, "Requests per minute per client")
	serveCmd.Flags().IntVar(&serveLoginAttempt, "login-attempts", 10, "Token requests per 10 minutes per client")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	closeLog := setupLogOutput(cfg, os.Stdout)
	defer closeLog()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	app := handlers.NewApp(handlers.NewDeps(db), handlers.AppOptions{
		RequestsPerMinute: serveRPM,
		LoginAttempts:     serveLoginAttempt,
		AccessLog:         true,
	})

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[serve] listening on :%s (%s)", cfg.Port, repos.DriverFor(cfg.DBDSN))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("[serve] shutting down")
		return app.ShutdownWithTimeout(5 * time.Second)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
