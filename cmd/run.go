package cmd

import (
	"errors"

	"github.com/minekeeper/minekeeper/app"
	"github.com/minekeeper/minekeeper/config"
	"github.com/minekeeper/minekeeper/internal/keeper"
	"github.com/minekeeper/minekeeper/internal/metrics"
	"github.com/minekeeper/minekeeper/util/conf"
	"github.com/minekeeper/minekeeper/util/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

var (
	runCmdDescription = `The run command starts the supervision loop: it launches the
miner executable detached in its own session, waits for the
hashrate to settle, then polls liveness and the miner status
endpoint. A dead miner, a failed probe, a hashrate below the
target or an expired run time all trigger a restart cycle.

Restarts that follow a suspiciously short run are "cold": the
configured reset commands are executed first, with a fixed
delay after each. Restarts after a full run are "hot" and go
straight to launch.

The command blocks until the keeper is terminated. The miner
itself is a detached peer process and survives termination of
the keeper.`
	runCmd = &cli.Command{
		Name:        "run",
		Usage:       "Supervise the miner process.",
		Description: runCmdDescription,
		Action:      runAction,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "miner",
				Usage:    "path of the miner executable to supervise.",
				Aliases:  []string{"m"},
				Category: "miner",
				EnvVars:  []string{"MINER_PATH"},
			},
			&cli.Float64Flag{
				Name:     "target-hashrate",
				Usage:    "hashrate floor below which the miner is restarted.",
				Aliases:  []string{"t"},
				Category: "miner",
				EnvVars:  []string{"MINER_TARGET_HASHRATE"},
			},
			&cli.BoolFlag{
				Name:     "metrics",
				Usage:    "serve prometheus metrics.",
				Category: "metrics",
				EnvVars:  []string{"METRICS_ENABLED"},
			},
			&cli.IntFlag{
				Name:     "metrics-port",
				Usage:    "port of the prometheus metrics endpoint.",
				Category: "metrics",
				EnvVars:  []string{"METRICS_PORT"},
			},
		},
	}

	// runCliMap maps run command flags to their config keys.
	runCliMap = map[string]string{
		"miner":           "miner.path",
		"target-hashrate": "keeper.target_hashrate",
		"metrics":         "metrics.enabled",
		"metrics-port":    "metrics.port",
	}
)

func runAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	// layer config: defaults < file < env < cli flags
	cfg, err := conf.Parse[config.Config](conf.ParseOptions{
		Defaults: config.DefaultConfig,
		FileName: ctx.String("config"),
		Cli:      ctx,
		CliMap:   runCliMap,
		Log:      log,
	})
	if err != nil {
		return err
	}

	if cfg.Miner.Path == "" {
		return errors.New("no miner executable configured")
	}

	// inject the config into the cli context
	ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

	application, err := app.New(ctx)
	if err != nil {
		return err
	}

	modules := []fx.Option{keeper.Module()}
	if cfg.Metrics.Enabled {
		modules = append(modules, metrics.Module())
	}

	return application.Run(ctx.Context, modules...)
}

func init() {
	rootApp.Commands = append(rootApp.Commands, runCmd)
}
