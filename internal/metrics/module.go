package metrics

import (
	"github.com/minekeeper/minekeeper/internal/keeper"
	"github.com/minekeeper/minekeeper/util/logging"
	"go.uber.org/fx"
)

// Module provides the metrics recorder and serves it over http.
func Module() fx.Option {
	return fx.Module("metrics",
		// rename logger for module
		logging.DecorateLogger("metrics"),
		// provide registry and recorder
		fx.Provide(NewRegistry),
		fx.Provide(NewRecorder),
		// expose the recorder to the keeper
		fx.Provide(func(r *Recorder) keeper.Observer { return r }),
		// provide server
		fx.Provide(NewLifecycleServer),
		// invoke server
		fx.Invoke(func(*Server) {}),
	)
}
