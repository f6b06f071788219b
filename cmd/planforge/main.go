package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/planforge/planforge/internal/api"
	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/database"
	"github.com/planforge/planforge/internal/influx"
	"github.com/planforge/planforge/internal/logging"
	"github.com/planforge/planforge/internal/model"
	"github.com/planforge/planforge/internal/monitor"
	"github.com/planforge/planforge/internal/notify"
	"github.com/planforge/planforge/internal/server"
	"github.com/planforge/planforge/internal/store"
)

const appName = "planforge"

func main() {
	var err error
	if len(os.Args) > 1 {
		err = runClient(os.Args[1], os.Args[2:])
	} else {
		err = run()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runClient talks to a running server instead of starting one. A missing
// config file is fine here, the defaults point at localhost.
func runClient(command string, args []string) error {
	_ = config.Load(".")
	client := api.New(viper.GetString("api.serverUrl"))

	switch command {
	case "healthcheck":
		if err := client.Healthcheck(); err != nil {
			return err
		}
		fmt.Println("server is healthy")
		return nil
	case "list":
		collection := model.CollectionPlans
		if len(args) > 0 {
			collection = args[0]
		}
		filter := ""
		if len(args) > 1 {
			filter = args[1]
		}
		docs, err := client.List(collection, filter)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			fmt.Printf("%s  %s  %s\n", doc.ID, doc.Touched.Format(time.RFC3339), doc.Name)
		}
		return nil
	case "import":
		if len(args) < 1 {
			return fmt.Errorf("usage: %s import <file> [collection]", appName)
		}
		collection := model.CollectionPlans
		if len(args) > 1 {
			collection = args[1]
		}
		doc, err := client.Import(args[0], collection)
		if err != nil {
			return err
		}
		fmt.Printf("imported %s as %s\n", args[0], doc.Path())
		return nil
	default:
		return fmt.Errorf("unknown command %q, expected healthcheck, list or import", command)
	}
}

func run() error {
	configErr := config.Load(".")

	logger, closeLogs, err := logging.Setup(appName)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closeLogs()

	if configErr != nil {
		logger.Warn().Err(configErr).Msg("Failed to load config, using defaults")
	} else {
		logger.Info().Msg("Loaded config")
	}

	db := database.NewManager(logger)
	if err := db.Connect(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Setup(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	hub, err := notify.NewHub(logging.NewHubLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create notify hub: %w", err)
	}

	repo := store.New(db.DB, hub, logger)
	repo.CompressContent = viper.GetBool("repository.compressContent")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if viper.GetBool("influx.enabled") {
		backupPath := filepath.Join(viper.GetString("logsDir"), "influx_backup.gz")
		metrics := influx.NewManager(logger, backupPath)
		if err := metrics.Connect(); err != nil {
			logger.Warn().Err(err).Msg("InfluxDB unavailable, activity metrics disabled")
		} else {
			mon := monitor.NewService(monitor.Dependencies{
				DB:     db.DB,
				Influx: metrics,
				Hub:    hub,
				Logger: logger,
			})
			if err := mon.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start monitor service")
			} else {
				defer mon.Stop()
			}
		}
	}

	srv := server.New(server.Dependencies{
		Store:     repo,
		Hub:       hub,
		Logger:    logger,
		ExportDir: viper.GetString("repository.exportDir"),
	})

	addr := fmt.Sprintf("%s:%d", viper.GetString("server.host"), viper.GetInt("server.port"))
	return srv.Run(ctx, addr)
}
