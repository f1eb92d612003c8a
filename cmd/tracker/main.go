// Command tracker is the employee-side CLI. It signs in with an OTP,
// clocks in, and reports the device position once a minute until it is
// interrupted, at which point it clocks out and signs out.
package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aclog/aclog-server-go/internal/client"
	apperrors "github.com/aclog/aclog-server-go/internal/errors"
	"github.com/aclog/aclog-server-go/internal/tracker"
)

type trackerConfig struct {
	ServerURL       string  `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	Identifier      string  `env:"IDENTIFIER,required"`
	StartLatitude   float64 `env:"START_LATITUDE" envDefault:"37.5665"`
	StartLongitude  float64 `env:"START_LONGITUDE" envDefault:"126.9780"`
	IntervalSeconds int     `env:"TRACKING_INTERVAL_SECONDS" envDefault:"60"`
	DenyPermission  bool    `env:"DENY_LOCATION_PERMISSION" envDefault:"false"`
	SkipWorkLog     bool    `env:"SKIP_WORKLOG" envDefault:"false"`
}

// deviceProvider stands in for a phone's location API. It walks
// randomly from the configured starting point so traces have shape.
type deviceProvider struct {
	deny bool
	lat  float64
	lng  float64
	rng  *rand.Rand
}

func newDeviceProvider(cfg trackerConfig) *deviceProvider {
	return &deviceProvider{
		deny: cfg.DenyPermission,
		lat:  cfg.StartLatitude,
		lng:  cfg.StartLongitude,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *deviceProvider) RequestPermission(ctx context.Context) error {
	if p.deny {
		return apperrors.PermissionDenied("Location permission denied")
	}
	return nil
}

func (p *deviceProvider) Current(ctx context.Context) (tracker.Coordinates, error) {
	// Roughly 50m per step.
	p.lat += (p.rng.Float64() - 0.5) * 0.001
	p.lng += (p.rng.Float64() - 0.5) * 0.001
	return tracker.Coordinates{Latitude: p.lat, Longitude: p.lng}, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var cfg trackerConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}

	api := client.New(cfg.ServerURL)
	ctx := context.Background()

	if err := api.SendOTP(ctx, cfg.Identifier); err != nil {
		log.Fatal().Err(err).Msg("failed to request otp")
	}
	fmt.Printf("OTP sent to %s\n", cfg.Identifier)

	otp, err := promptOTP()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read otp")
	}

	user, err := api.Login(ctx, cfg.Identifier, otp)
	if err != nil {
		log.Fatal().Err(err).Msg("login failed")
	}
	log.Info().Str("name", user.Name).Int64("userId", user.ID).Msg("signed in")

	if !cfg.SkipWorkLog {
		if err := api.ClockIn(ctx); err != nil {
			log.Warn().Err(err).Msg("clock-in failed, continuing without work log")
		} else {
			log.Info().Msg("clocked in")
		}
	}

	trk := tracker.New(newDeviceProvider(cfg), api,
		tracker.WithInterval(time.Duration(cfg.IntervalSeconds)*time.Second))

	if err := trk.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start tracking")
	}
	log.Info().Int("intervalSeconds", cfg.IntervalSeconds).Msg("tracking started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Stop sampling before the session goes away so no capture races
	// the logout.
	trk.Stop()
	log.Info().Msg("tracking stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !cfg.SkipWorkLog {
		if err := api.ClockOut(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("clock-out failed")
		} else {
			log.Info().Msg("clocked out")
		}
	}

	if err := api.Logout(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("logout failed")
	} else {
		log.Info().Msg("signed out")
	}
}

func promptOTP() (string, error) {
	fmt.Print("Enter OTP: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
