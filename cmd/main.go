package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heating_control/internal/handlers"
	"heating_control/internal/hass"
	"heating_control/internal/logger"
	"heating_control/internal/repository"
	"heating_control/internal/repository/db"
	"heating_control/internal/server"
	"heating_control/internal/service"

	"github.com/spf13/viper"
)

const hubConnectRetry = 5 * time.Second

func main() {
	// load config.yml first: it carries the log level
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	// open DB
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(database)
	hub := hass.New(hass.Config{
		URL:         viper.GetString("hub.url"),
		AccessToken: viper.GetString("hub.access_token"),
		Monitored:   viper.GetStringSlice("hub.monitored_entities"),
	}, log)
	services := service.NewService(repos, hub, service.Config{
		ModeEntityID:   viper.GetString("hub.mode_entity"),
		TopicNamespace: viper.GetString("mqtt.topic_namespace"),
		DeviceNames:    viper.GetStringMapString("mqtt.device_names"),
	}, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// connect to the hub and reconcile the persisted mode once
	go connectHub(ctx, hub, services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, hub, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "heating.db")
		dbPath = "heating.db"
	}
	return db.InitDB(dbPath)
}

// connectHub establishes the hub session, retrying until the first connect
// succeeds, then runs the one-time mode reconciliation. Later drops are
// handled by the client's own reconnect loop.
func connectHub(ctx context.Context, hub *hass.Client, services *service.Service, log *logger.Logger) {
	for {
		err := hub.Connect(ctx)
		if err == nil {
			break
		}
		log.Errorw("hub connect failed", "err", err, "retry_in", hubConnectRetry)
		select {
		case <-ctx.Done():
			return
		case <-time.After(hubConnectRetry):
		}
	}

	log.Infow("hub connected")
	if err := services.Modes.RestoreFromHub(ctx); err != nil {
		log.Errorw("mode restore from hub failed", "err", err)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, hub *hass.Client, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines and close the hub session
	cancel()
	hub.Close()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
