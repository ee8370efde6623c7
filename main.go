// main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"autoscribe/internal/control"
	"autoscribe/internal/log"
)

func main() {
	log.Configure(log.Config{})
	logger := log.WithComponent("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := NewApp()
	if err := app.Startup(ctx); err != nil {
		logger.Error().Err(err).Msg("engine startup failed")
		os.Exit(1)
	}

	server := control.NewServer(app)
	app.SetEventHubBroadcaster(server)

	port, err := server.Start(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start control server")
		os.Exit(1)
	}
	logger.Info().Int("port", port).Msg("control server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	server.Stop(ctx)
	app.Shutdown(ctx)
}
