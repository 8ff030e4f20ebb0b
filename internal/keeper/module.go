package keeper

import (
	"context"
	"errors"

	"github.com/minekeeper/minekeeper/internal/miner"
	"github.com/minekeeper/minekeeper/internal/probe"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the keeper and runs it for the lifetime of the app.
func Module() fx.Option {
	return fx.Module("keeper",
		// provide keeper
		fx.Provide(NewLifecycleKeeper),
		// invoke keeper
		fx.Invoke(func(*Keeper) {}),
	)
}

type LifecycleParams struct {
	fx.In

	Context context.Context

	Config   Config
	Spec     miner.Spec
	Endpoint probe.Endpoint

	// Observer is absent when metrics are disabled
	Observer Observer `optional:"true"`

	Logger *zap.Logger
}

// NewLifecycleKeeper wires the keeper to real collaborators (miner
// launcher, http prober) and runs the supervision loop as a lifecycle
// hook.
func NewLifecycleKeeper(params LifecycleParams, lc fx.Lifecycle) (*Keeper, error) {
	prober, err := probe.New(params.Endpoint, params.Logger)
	if err != nil {
		return nil, err
	}

	launcher := func() (Process, error) {
		return miner.Start(params.Spec, params.Logger)
	}

	k := New(Params{
		Config:   params.Config,
		Launcher: launcher,
		Prober:   prober,
		Observer: params.Observer,
		Log:      params.Logger,
	})

	runCtx, cancel := context.WithCancel(params.Context)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := k.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					params.Logger.Error("keeper loop exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			// stop supervising; the miner is a peer process and
			// deliberately keeps running
			cancel()
			return nil
		},
	})

	return k, nil
}
