package config_test

import (
	"testing"
	"time"

	"github.com/minekeeper/minekeeper/config"
	"github.com/minekeeper/minekeeper/util/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := conf.Parse[config.Config](conf.ParseOptions{
		Defaults: config.DefaultConfig,
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.API.Host)
	assert.Equal(t, 4580, cfg.API.Port)
	assert.Equal(t, "api.json", cfg.API.Page)
	assert.Equal(t, "json", cfg.API.Format)
	assert.Equal(t, "xmrstak", cfg.API.Parser)
	assert.Equal(t, 6*time.Second, cfg.API.Timeout)

	assert.Equal(t, 11500.0, cfg.Keeper.TargetHashrate)
	assert.Equal(t, 5*time.Minute, cfg.Keeper.HotRestartThreshold)
	assert.Equal(t, 40*time.Minute, cfg.Keeper.MaxRunTime)
	assert.Equal(t, 2*time.Minute, cfg.Keeper.SettleTime)
	assert.Equal(t, 20*time.Second, cfg.Keeper.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Keeper.KillGrace)
	assert.Equal(t, 16*time.Second, cfg.Keeper.ColdStartDelay)

	assert.False(t, cfg.Metrics.Enabled)
}
