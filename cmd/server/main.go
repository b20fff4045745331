package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/webbridge/internal/infrastructure/server"
	"github.com/GriffinCanCode/webbridge/internal/shared/paths"
	"github.com/GriffinCanCode/webbridge/internal/windows"
)

func main() {
	cfg := config.LoadOrDefault()

	// Flags override environment
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Server host")
	flag.StringVar(&cfg.Bridge.Namespace, "namespace", cfg.Bridge.Namespace, "Page global installed by the bridge runtime")
	flag.BoolVar(&cfg.Bridge.Strict, "strict", cfg.Bridge.Strict, "Reply unknown_binding faults instead of null")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv := server.NewServer(cfg)
	logger := srv.Logger()

	if err := windows.Open(srv.Manager(), windows.DefaultConfig(), logger.Component("windows")); err != nil {
		logger.Fatal("Failed to open windows", zap.Error(err))
	}
	for _, name := range srv.Manager().Names() {
		logger.Info("Window ready", zap.String("url", "http://"+cfg.Addr()+paths.For(name).Page()))
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		if err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}
}
