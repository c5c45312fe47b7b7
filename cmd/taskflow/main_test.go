package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/model"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")

	require.Error(t, run(nil))
}

func TestInitWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	require.NoError(t, run([]string{"init", "--config", path, "--addr", ":9100", "--dsn", "/tmp/tf.db"}))

	cfg, err := model.LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Address)
	assert.Equal(t, "/tmp/tf.db", cfg.Store.DSN)
	assert.Len(t, cfg.Auth.JWTSecret, 64)

	err = run([]string{"init", "--config", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, run([]string{"init", "--config", path, "--force"}))
}
