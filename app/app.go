package app

import (
	"github.com/minekeeper/minekeeper/config"
	"github.com/minekeeper/minekeeper/internal/shell"
	"github.com/minekeeper/minekeeper/util/conf"
	"github.com/minekeeper/minekeeper/util/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

// New assembles the application shell, supplying the config sections
// every module pulls its settings from.
func New(ctx *cli.Context) (*shell.Shell, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	sharedModule := fx.Module(
		"shared",
		// provide global config
		fx.Supply(cfg),
		// provide miner spec
		fx.Supply(cfg.Miner),
		// provide status endpoint
		fx.Supply(cfg.API),
		// provide keeper config
		fx.Supply(cfg.Keeper),
		// provide metrics config
		fx.Supply(cfg.Metrics),
	)

	return shell.New(log, sharedModule), nil
}
