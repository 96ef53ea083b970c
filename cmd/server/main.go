package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/setgame/pkg/api"
	"github.com/cbodonnell/setgame/pkg/cards"
	"github.com/cbodonnell/setgame/pkg/config"
	"github.com/cbodonnell/setgame/pkg/game"
	"github.com/cbodonnell/setgame/pkg/log"
	"github.com/cbodonnell/setgame/pkg/state"
	"github.com/cbodonnell/setgame/pkg/telemetry"
	"github.com/cbodonnell/setgame/pkg/ui"
	"github.com/cbodonnell/setgame/pkg/version"
	"github.com/cbodonnell/setgame/pkg/workers"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func main() {
	apiPort := flag.Int("api-port", 9090, "API port to listen on, 0 to disable")
	allowOrigin := flag.String("allow-origin", "*", "Origin allowed to call the API")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting set game server version %s", version.Get())

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	log.Info("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.SetupOptions{
		ServiceName: "setgame",
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to set up tracing: %v", err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("Failed to flush traces: %v", err)
		}
	}()

	// workers run until the game is over
	var workerGroup errgroup.Group

	gameID := uuid.NewString()
	stateManager := state.NewInMemoryStateManager(gameID)

	displayChannelSize := 100
	displayWorker := workers.NewDisplayWorker(workers.NewDisplayWorkerOptions{
		Display:      ui.NewLogDisplay(logger.With("game", gameID)),
		StateManager: stateManager,
		BufferSize:   displayChannelSize,
		Logger:       logger,
	})
	displayCtx, cancelDisplay := context.WithCancel(context.Background())
	workerGroup.Go(func() error {
		displayWorker.Start(displayCtx)
		return nil
	})

	dealer, err := game.NewDealer(game.NewDealerOptions{
		GameID:  gameID,
		Config:  cfg,
		Rules:   cards.NewClassicRules(cfg.FeatureSize, cfg.FeatureCount),
		Display: displayWorker,
		Logger:  logger,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create dealer: %v", err))
	}

	var server *api.APIServer
	if *apiPort != 0 {
		server = api.NewAPIServer(api.NewAPIServerOptions{
			Port:         *apiPort,
			AllowOrigin:  *allowOrigin,
			Game:         dealer,
			StateManager: stateManager,
			Logger:       logger,
		})
		workerGroup.Go(func() error {
			server.Start()
			return nil
		})
	}

	if err := dealer.Run(ctx); err != nil {
		log.Error("Game ended with error: %v", err)
	}

	cancelDisplay()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop server: %v", err)
		}
	}
	if err := workerGroup.Wait(); err != nil {
		log.Error("Worker failed: %v", err)
	}
}
