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

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taxi-fleet-service/internal/adapters/driven/persistence/gormdb"
	"taxi-fleet-service/internal/adapters/driving/httpapi"
	"taxi-fleet-service/internal/config"
	"taxi-fleet-service/internal/core/domain"
	"taxi-fleet-service/internal/core/services"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "taxi-fleet-service",
		Short:         "Multi-tenant fleet management service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(configPath)
		},
	}
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrate(configPath)
		},
	}
	root.AddCommand(serve, migrate)
	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg.Level = lvl
	return cfg.Build()
}

func runServe(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := gormdb.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	server, err := buildServer(logger, db)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

func runMigrate(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := gormdb.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// Constructing the adapters runs their migrations.
	if _, err := buildServer(logger, db); err != nil {
		return err
	}
	logger.Info("migration complete", zap.String("driver", cfg.Database.Driver))
	return nil
}

func buildServer(logger *zap.Logger, db *gorm.DB) (*httpapi.Server, error) {
	links := gormdb.NewEntityLinkRepository(db)
	rightsRecords := gormdb.NewRightRepository(db)
	rentalRecords := gormdb.NewRentalRepository(db)
	agentRecords := gormdb.NewRecordStore[domain.Agent](db)
	carRecords := gormdb.NewRecordStore[domain.Car](db)
	driverRecords := gormdb.NewRecordStore[domain.Driver](db)

	graph, err := services.NewEntityGraph(logger, links)
	if err != nil {
		return nil, err
	}
	rights, err := services.NewRightsIndex(logger, rightsRecords, graph)
	if err != nil {
		return nil, err
	}
	agents, err := services.NewAgentRepository(logger, graph, rights, agentRecords)
	if err != nil {
		return nil, err
	}
	cars, err := services.NewCarRepository(logger, graph, rights, carRecords)
	if err != nil {
		return nil, err
	}
	drivers, err := services.NewDriverRepository(logger, graph, rights, driverRecords)
	if err != nil {
		return nil, err
	}
	rentals, err := services.NewCarRentalRepository(logger, graph, rights, rentalRecords)
	if err != nil {
		return nil, err
	}

	return httpapi.NewServer(logger, graph, rights, agents, cars, drivers, rentals), nil
}
