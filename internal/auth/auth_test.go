package auth_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/clock"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/tests/testutil"
)

const invite = "let-me-in"

func newService(t *testing.T) (*auth.Service, *clock.FakeClock) {
	t.Helper()

	c := clock.Fake(testutil.Epoch)
	tokens, err := auth.NewTokens("secret", 7*24*time.Hour, c)
	require.NoError(t, err)
	return auth.NewService(testutil.NewTestStore(t), tokens, invite, c, zerolog.Nop()), c
}

func TestRegisterMember(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	s, err := svc.Register(ctx, auth.RegisterInput{
		Name: "Ann", Email: " Ann@Example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, s.Role)
	assert.Equal(t, "ann@example.com", s.Email)
	assert.NotEmpty(t, s.Token)
	assert.NotEqual(t, "pw", s.Password)

	actor, err := svc.Authenticate(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, model.Actor{ID: s.ID, Role: model.RoleMember}, actor)
}

func TestRegisterAdminWithInviteToken(t *testing.T) {
	svc, _ := newService(t)

	s, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "Root", Email: "root@example.com", Password: "pw", AdminInviteToken: invite,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, s.Role)

	s, err = svc.Register(context.Background(), auth.RegisterInput{
		Name: "Eve", Email: "eve@example.com", Password: "pw", AdminInviteToken: "guess",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, s.Role)
}

func TestRegisterEmptyInviteNeverGrantsAdmin(t *testing.T) {
	c := clock.Fake(testutil.Epoch)
	tokens, err := auth.NewTokens("secret", time.Hour, c)
	require.NoError(t, err)
	svc := auth.NewService(testutil.NewTestStore(t), tokens, "", c, zerolog.Nop())

	s, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "Eve", Email: "eve@example.com", Password: "pw", AdminInviteToken: "",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, s.Role)
}

func TestRegisterValidationAndConflict(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{Email: "a@b.c", Password: "pw"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, auth.RegisterInput{Name: "B", Email: "A@B.C", Password: "pw"})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, auth.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	s, err := svc.Login(ctx, auth.LoginInput{Email: "ANN@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, s.ID)

	_, wrongPassword := svc.Login(ctx, auth.LoginInput{Email: "ann@example.com", Password: "nope"})
	_, unknownEmail := svc.Login(ctx, auth.LoginInput{Email: "bob@example.com", Password: "pw"})
	assert.ErrorIs(t, wrongPassword, model.ErrUnauthorized)
	assert.ErrorIs(t, unknownEmail, model.ErrUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestTokenExpires(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()

	s, err := svc.Register(ctx, auth.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	c.Advance(7*24*time.Hour + time.Second)
	_, err = svc.Authenticate(ctx, s.Token)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestTokenRejectsTampering(t *testing.T) {
	c := clock.Fake(testutil.Epoch)
	mine, err := auth.NewTokens("secret", time.Hour, c)
	require.NoError(t, err)
	theirs, err := auth.NewTokens("other", time.Hour, c)
	require.NoError(t, err)

	token, err := theirs.Issue("u1")
	require.NoError(t, err)
	_, err = mine.Verify(token)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = mine.Verify("not-a-jwt")
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	token, err = mine.Issue("u1")
	require.NoError(t, err)
	id, err := mine.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := auth.NewTokens("", time.Hour, clock.Real())
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()

	ann, err := svc.Register(ctx, auth.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, auth.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	c.Advance(time.Hour)
	s, err := svc.UpdateProfile(ctx, ann.Actor(), auth.ProfileInput{Name: "Ann B", Password: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", s.Name)
	assert.Equal(t, "ann@example.com", s.Email)
	assert.NotEmpty(t, s.Token)

	_, err = svc.Login(ctx, auth.LoginInput{Email: "ann@example.com", Password: "new"})
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, ann.Actor(), auth.ProfileInput{Email: "bob@example.com"})
	assert.ErrorIs(t, err, model.ErrConflict)

	profile, err := svc.Profile(ctx, ann.Actor())
	require.NoError(t, err)
	assert.Equal(t, "Ann B", profile.Name)
}

func TestSessionNeverSerializesPassword(t *testing.T) {
	svc, _ := newService(t)

	s, err := svc.Register(context.Background(), auth.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), `"token"`)
	assert.Contains(t, string(data), `"role":"member"`)
}

func TestUserLookup(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	ann, err := svc.Register(ctx, auth.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	u, err := svc.User(ctx, ann.Actor(), ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)

	_, err = svc.User(ctx, ann.Actor(), "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, auth.RegisterInput{
		Name: "Root", Email: "root@example.com", Password: "pw", AdminInviteToken: invite,
	})
	require.NoError(t, err)
	ann, err := svc.Register(ctx, auth.RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "old-password",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		actor    model.Actor
		id       string
		password string
		want     error
	}{
		{"short password", admin.Actor(), ann.ID, "12345", model.ErrValidation},
		{"unknown user", admin.Actor(), "missing", "new-password", model.ErrNotFound},
		{"member cannot reset", ann.Actor(), ann.ID, "new-password", model.ErrForbidden},
		{"admin resets", admin.Actor(), ann.ID, "new-password", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ResetPassword(ctx, tt.actor, tt.id, tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}

	_, err = svc.Login(ctx, auth.LoginInput{Email: "ann@example.com", Password: "old-password"})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	s, err := svc.Login(ctx, auth.LoginInput{Email: "ann@example.com", Password: "new-password"})
	require.NoError(t, err)
	assert.Equal(t, ann.ID, s.ID)
}

func TestOverlongPasswordIsValidationError(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: strings.Repeat("p", 73),
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = auth.HashPassword(strings.Repeat("p", 72))
	assert.NoError(t, err)
}
