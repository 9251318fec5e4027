package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		viper.Reset()
	})

	viper.Set("logging.level", "warn")
	viper.Set("logging.format", "json")
	require.NoError(t, setupLogging())
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))

	viper.Set("logging.level", "loud")
	assert.Error(t, setupLogging())

	viper.Set("logging.level", "info")
	viper.Set("logging.format", "xml")
	assert.Error(t, setupLogging())
}
