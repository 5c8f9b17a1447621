package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"price-tracker/internal/chart"
	"price-tracker/internal/config"
	"price-tracker/internal/provider"
	"price-tracker/internal/tracker"
	"price-tracker/internal/tui"
	"price-tracker/pkg/logging"
	"price-tracker/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	newLoggerFunc  = logging.New
	initTracerFunc = tracing.Setup
	runProgramFunc = func(ctx context.Context, m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	}
	setupSignalNotify = ossignal.Notify
	exitFunc          = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "price-tracker: %v\n", err)
		exitFunc(1)
	}
}

func run() error {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	logger, logCloser, err := newLoggerFunc(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr, err := initTracerFunc(ctx, tracing.Session{AssetID: cfg.AssetID, Currency: cfg.VsCurrency})
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tr.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down tracer provider", "err", err)
		}
	}()

	cg := provider.NewCoinGeckoProvider(tr.Tracer("coingecko"), provider.Options{
		BaseURL:        cfg.CoinGeckoBaseURL,
		AssetID:        cfg.AssetID,
		Currency:       cfg.VsCurrency,
		RequestsPerMin: cfg.CoinGeckoRequestsPerMin,
		Timeout:        time.Duration(cfg.CoinGeckoTimeoutSecs) * time.Second,
		Logger:         logger,
	})

	surface := chart.NewTerminal(chart.InitialWidth, chart.InitialHeight)
	coord := tracker.NewCoordinator(tr.Tracer("coordinator"), cg, cg, surface,
		tracker.WithLogger(logger),
		tracker.WithStateListener(func(s tracker.State) {
			logger.Debug("state changed", "state", s.String())
		}),
	)
	defer coord.Close()

	// Quit cleanly on SIGTERM as well as on the quit keys.
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGTERM)
	go func() {
		select {
		case <-quit:
			logger.Info("signal received, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("session starting", "asset", cg.AssetID(), "currency", cg.Currency())
	model := tui.NewModel(ctx, coord, surface, tui.Options{
		Currency:    cg.Currency(),
		ChartWidth:  chart.InitialWidth,
		ChartHeight: chart.InitialHeight,
		Logger:      logger,
	})

	if err := runProgramFunc(ctx, model); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Info("session ended")
	return nil
}
