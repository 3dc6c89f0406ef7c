package service

import (
	"context"
	"mini_lms_backend/internal/config"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret", ExpireTime: time.Hour}}
	auth := NewAuthService(env.Users, cfg)

	user, err := auth.Register(ctx, RegisterInput{Username: "ann", Email: " Ann@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.Learner, user.Role)
	assert.Equal(t, "ann@example.com", user.Email)

	_, err = auth.Register(ctx, RegisterInput{Username: "ann2", Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
	_, err = auth.Register(ctx, RegisterInput{Username: "root", Email: "root@example.com", Password: "secret1", Role: model.Admin})
	assert.ErrorIs(t, err, util.ErrValidation)

	token, logged, err := auth.Login(ctx, "ANN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := util.ParseJWT(token, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, model.Caller{UserID: user.ID, Role: model.Learner, Email: "ann@example.com"}, claims.Caller())

	_, _, err = auth.Login(ctx, "ann@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	require.NoError(t, env.Users.SetActive(user.ID, false))
	_, _, err = auth.Login(ctx, "ann@example.com", "secret1")
	assert.ErrorIs(t, err, util.ErrAccountDisabled)
}
