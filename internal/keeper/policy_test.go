package keeper_test

import (
	"testing"
	"time"

	"github.com/minekeeper/minekeeper/internal/keeper"
	"github.com/stretchr/testify/assert"
)

func TestNeedsColdStart(t *testing.T) {
	now := time.Date(2018, 1, 12, 21, 0, 0, 0, time.UTC)
	threshold := 5 * time.Minute

	tests := []struct {
		name      string
		lastStart time.Time
		expected  bool
	}{
		{
			name:      "first start of the session is cold",
			lastStart: time.Time{},
			expected:  true,
		},
		{
			name:      "restart right after a start is cold",
			lastStart: now.Add(-time.Second),
			expected:  true,
		},
		{
			name:      "restart just below the threshold is cold",
			lastStart: now.Add(-threshold + time.Nanosecond),
			expected:  true,
		},
		{
			name:      "restart exactly at the threshold is hot",
			lastStart: now.Add(-threshold),
			expected:  false,
		},
		{
			name:      "restart after a long run is hot",
			lastStart: now.Add(-time.Hour),
			expected:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, keeper.NeedsColdStart(tc.lastStart, now, threshold))
		})
	}
}

func TestRunTimeExpired(t *testing.T) {
	now := time.Date(2018, 1, 12, 21, 0, 0, 0, time.UTC)
	maxRunTime := 40 * time.Minute

	assert.False(t, keeper.RunTimeExpired(now.Add(-time.Minute), now, maxRunTime))
	assert.False(t, keeper.RunTimeExpired(now.Add(-maxRunTime+time.Second), now, maxRunTime))
	assert.True(t, keeper.RunTimeExpired(now.Add(-maxRunTime), now, maxRunTime))
	assert.True(t, keeper.RunTimeExpired(now.Add(-time.Hour), now, maxRunTime))
}

func TestClassify(t *testing.T) {
	target := 11500.0

	tests := []struct {
		name     string
		hashrate float64
		expected keeper.Health
	}{
		{"failure sentinel", -1, keeper.HealthProbeFailed},
		{"negative", -5, keeper.HealthProbeFailed},
		{"zero", 0, keeper.HealthProbeFailed},
		{"below target", 11499.9, keeper.HealthBelowTarget},
		{"exactly at target", 11500.0, keeper.HealthOK},
		{"above target", 12000.0, keeper.HealthOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, keeper.Classify(tc.hashrate, target))
		})
	}
}
