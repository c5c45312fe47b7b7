package credential_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/credential"
	"github.com/nhle/taskflow/internal/model"
)

func TestVaultRoundTrip(t *testing.T) {
	v := credential.NewVault(keyring.NewArrayKeyring(nil))

	_, err := v.Get(credential.KeyJWTSecret)
	assert.ErrorIs(t, err, credential.ErrNotFound)

	require.NoError(t, v.Set(credential.KeyJWTSecret, "s3cret"))
	got, err := v.Get(credential.KeyJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	require.NoError(t, v.Delete(credential.KeyJWTSecret))
	_, err = v.Get(credential.KeyJWTSecret)
	assert.ErrorIs(t, err, credential.ErrNotFound)
}

func TestVaultResolve(t *testing.T) {
	v := credential.NewVault(keyring.NewArrayKeyring([]keyring.Item{
		{Key: credential.KeyJWTSecret, Data: []byte("from-ring")},
		{Key: credential.KeyAdminInviteToken, Data: []byte("invite-from-ring")},
	}))

	cfg := model.AuthConfig{AdminInviteToken: "configured"}
	require.NoError(t, v.Resolve(&cfg))
	assert.Equal(t, "from-ring", cfg.JWTSecret)
	assert.Equal(t, "configured", cfg.AdminInviteToken)

	empty := credential.NewVault(keyring.NewArrayKeyring(nil))
	cfg = model.AuthConfig{}
	require.NoError(t, empty.Resolve(&cfg))
	assert.Equal(t, "", cfg.JWTSecret)
}
