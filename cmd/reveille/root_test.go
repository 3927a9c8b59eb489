package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerLevels(t *testing.T) {
	defer func() {
		globalOpts.verbose = false
		setupLogger()
	}()

	globalOpts.verbose = false
	setupLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	globalOpts.verbose = true
	setupLogger()
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
