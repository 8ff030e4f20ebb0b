package keeper

import (
	"context"

	"go.uber.org/zap"
)

// CommandRunner dispatches a single cold start command. The default
// runner hands the command to the system shell without waiting for it.
type CommandRunner func(command string) error

// coldStart runs the configured reset commands in order, sleeping the
// configured delay after each one. Command exit status is deliberately
// not checked: reset steps are opaque side effects, and launch proceeds
// regardless of their outcome.
func (k *Keeper) coldStart(ctx context.Context) error {
	for _, command := range k.config.ColdStartCommands {
		k.log.Info("running cold start command", zap.String("command", command))

		if err := k.runCommand(command); err != nil {
			k.log.Warn("cold start command dispatch failed",
				zap.String("command", command),
				zap.Error(err),
			)
		}

		if err := sleepCtx(ctx, k.config.ColdStartDelay); err != nil {
			return err
		}
	}

	k.observer.ColdStart()

	return nil
}
