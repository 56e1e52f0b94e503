package main

import (
	"go.uber.org/zap"

	"github.com/selve-org/selve-engine/internal/bank"
	"github.com/selve-org/selve-engine/internal/config"
	"github.com/selve-org/selve-engine/internal/database"
	"github.com/selve-org/selve-engine/internal/logging"
	"github.com/selve-org/selve-engine/internal/router"
	"github.com/selve-org/selve-engine/internal/session"
)

func main() {
	// Initialize Logger
	log, err := logging.Init(".")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Load configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Database
	database.Init(log)

	// Load the item bank at startup; it stays read-only for the process
	// lifetime and is shared across all sessions.
	itemBank, err := bank.LoadBank(config.Conf.Server.BankPath)
	if err != nil {
		log.Fatal("Failed to load item bank", zap.Error(err))
	}
	log.Info("Item bank loaded", zap.Int("items", itemBank.Size()))

	// The manager reads engine knobs through this closure on every turn, so
	// a config reload reaches the next selected batch.
	engineCfg := func() config.EngineConfig { return config.Conf.Engine }
	manager := session.NewManager(
		log,
		itemBank,
		engineCfg,
		session.DemographicExclusions(config.Conf.Exclusions),
		session.PairDedup(engineCfg().ConsistencyPairs, engineCfg().ConsistencyMinResponse),
	)

	r := router.Setup(log, manager)

	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
