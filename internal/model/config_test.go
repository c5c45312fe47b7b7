package model_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/model"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, model.DriverSQLite, cfg.Store.Driver)
	assert.NotEmpty(t, cfg.Store.DSN)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: "127.0.0.1:9000"
  timeout: 3s
store:
  driver: sqlite
  dsn: /tmp/tasks.db
auth:
  jwt_secret: s3cret
  admin_invite_token: invite
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := model.LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "/tmp/tasks.db", cfg.Store.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "invite", cfg.Auth.AdminInviteToken)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigEnvAndFlagsOverride(t *testing.T) {
	t.Setenv("TASKFLOW_AUTH_JWT_SECRET", "from-env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", "", "")
	require.NoError(t, fs.Parse([]string{"--addr", ":7777"}))

	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), fs)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, ":7777", cfg.Server.Address)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("TASKFLOW_STORE_DRIVER", "oracle")

	_, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestLoadConfigRequiresDSNForMongo(t *testing.T) {
	t.Setenv("TASKFLOW_STORE_DRIVER", "mongo")

	_, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &model.AppConfig{
		Server: model.ServerConfig{Address: ":8100", Timeout: 5 * time.Second},
		Store:  model.StoreConfig{Driver: model.DriverSQLite, DSN: "/tmp/x.db", Database: "taskflow"},
		Auth:   model.AuthConfig{JWTSecret: "k", TokenTTL: time.Hour},
		Log:    model.LogConfig{Level: "warn", Format: "console"},
	}
	require.NoError(t, model.SaveConfig(path, cfg))

	loaded, err := model.LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":8100", loaded.Server.Address)
	assert.Equal(t, time.Hour, loaded.Auth.TokenTTL)
	assert.Equal(t, "/tmp/x.db", loaded.Store.DSN)
	assert.Equal(t, "warn", loaded.Log.Level)
}
