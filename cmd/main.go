package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "meross_emulator/docs"
	"meross_emulator/internal/config"
	"meross_emulator/internal/handlers"
	"meross_emulator/internal/logger"
	"meross_emulator/internal/mqttbridge"
	"meross_emulator/internal/repository"
	"meross_emulator/internal/repository/db"
	"meross_emulator/internal/server"
	"meross_emulator/internal/service"
)

const (
	defaultConfigPath = "configs/config.yml"
	configPathEnv     = "MEROSS_EMU_CONFIG"
	shutdownTimeout   = 10 * time.Second
)

// @title                       Meross plug emulator API
// @version                     1.0
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleEncoding).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Encoding)

	sqlDB, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services, devices := service.NewService(repos, service.AuthConfig{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registerDevices(ctx, cfg.Devices, devices, log)
	ensureAdmin(ctx, cfg.Auth, repos, log)

	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		services.Simulator.Run(ctx, cfg.Simulator.Tick)
	}()

	startBridge(ctx, cfg.MQTT, devices, log)

	srv := server.New(cfg.Port, handlers.NewHandler(services, log).InitRoutes())
	runHTTPServer(srv, log)

	waitForShutdown(cancel, srv, simDone, log)
}

func configPath() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	return defaultConfigPath
}

func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening sqlite", "path", path)
	return db.InitDB(path)
}

// registerDevices seeds the registry from config; a bad device is logged and skipped.
func registerDevices(ctx context.Context, seeds []config.DeviceConfig, devices *service.DeviceService, log *logger.Logger) {
	for _, d := range seeds {
		desc, err := d.Descriptor()
		if err == nil {
			err = devices.Register(ctx, desc)
		}
		if err != nil {
			log.Errorw("device_register_failed", "device", d.UUID, "err", err)
		}
	}
	log.Infow("devices ready", "count", len(devices.IDs()))
}

func ensureAdmin(ctx context.Context, cfg config.AuthConfig, repos *repository.Repository, log *logger.Logger) {
	auth := service.NewAuthService(repos.Auth, service.AuthConfig{SigningKey: cfg.SigningKey, TokenTTL: cfg.TokenTTL})
	created, err := auth.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		log.Errorw("admin bootstrap failed", "user", cfg.AdminUser, "err", err)
		return
	}
	if created {
		log.Infow("admin user created", "user", cfg.AdminUser)
	}
}

func startBridge(ctx context.Context, cfg config.MQTTConfig, devices *service.DeviceService, log *logger.Logger) {
	if cfg.Broker == "" {
		return
	}
	bridge := mqttbridge.New(mqttbridge.Config{
		Broker:   cfg.Broker,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
		QoS:      cfg.QoS,
	}, devices, log)
	if err := bridge.Start(ctx); err != nil {
		log.Errorw("mqtt bridge not started", "broker", cfg.Broker, "err", err)
		return
	}
	log.Infow("mqtt bridge connected", "broker", cfg.Broker)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, simDone <-chan struct{}, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// stop background goroutines; the simulator saves snapshots on exit
	cancel()
	select {
	case <-simDone:
	case <-ctx.Done():
		log.Warnw("simulator did not stop in time")
	}
	_ = log.Sync()
}
