// The zimmerbot server: cabin catalog, availability, pricing, holds,
// bookings, and the conversational agent over one HTTP surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"zimmerbot/internal/agent"
	"zimmerbot/internal/api"
	"zimmerbot/internal/availability"
	"zimmerbot/internal/booking"
	"zimmerbot/internal/calendar"
	"zimmerbot/internal/config"
	"zimmerbot/internal/dates"
	"zimmerbot/internal/email"
	"zimmerbot/internal/hold"
	"zimmerbot/internal/logger"
	"zimmerbot/internal/payment"
	"zimmerbot/internal/pricing"
	"zimmerbot/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:   "zimmerbot-server",
	Short: "Reservation backend for the cabin rental business",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	logger.Setup(cfg.IsDevelopment())

	loc := dates.BusinessLocation(cfg.BusinessTimezone)

	db, err := repository.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	store := repository.NewStore(db)

	holds := hold.New(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Hold.Duration)

	cal, err := calendar.NewClient(cfg.Calendar.BaseURL, cfg.Calendar.TokenFile, cfg.BusinessTimezone, cfg.Calendar.Timeout)
	if err != nil {
		return fmt.Errorf("calendar client: %w", err)
	}

	resolver := availability.NewResolver(cal)
	pricer := pricing.New(pricing.Options{
		Holidays:            cfg.Pricing.Holidays,
		HighSeasonMonths:    cfg.Pricing.HighSeasonMonths,
		HolidaySeasonMonths: cfg.Pricing.HolidaySeasonMonths,
	})
	payments := payment.New(cfg.Payment.SecretKey, cfg.Payment.WebhookSecret)
	mailer := email.NewMailer(cfg.SMTP)

	bookings := booking.NewService(store, holds, resolver, pricer, cal, payments, mailer, loc)
	chatAgent := agent.New(store, bookings, resolver, holds, pricer)

	server := api.NewServer(cfg, store, holds, resolver, pricer, bookings, chatAgent, payments, cal, loc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.APIPort).Str("env", cfg.Env).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
