package service

import (
	"context"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteUserRemovesLearnerData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "admin", model.Admin)
	trainer := env.user(t, "trainer", model.Trainer)
	learner := env.user(t, "learner", model.Learner)
	course := env.course(t, trainer, "Go")
	m := env.module(t, course.ID, "m1")
	env.enroll(t, learner, course.ID)
	_, err := env.Progress.MarkComplete(learner.UserID, m.ID, course.ID)
	require.NoError(t, err)
	_, err = env.Feedback.Submit(ctx, learner, course.ID, "nice", 4)
	require.NoError(t, err)
	_, err = env.Courses.CreateCourse(ctx, trainer, CourseInput{Name: "Rust"})
	require.NoError(t, err)

	require.NoError(t, env.UsersSvc.DeleteUser(ctx, admin, learner.UserID))

	assert.Zero(t, env.count(t, &model.User{}, "id = ?", learner.UserID))
	assert.Zero(t, env.count(t, &model.ModuleProgress{}, ""))
	assert.Zero(t, env.count(t, &model.Feedback{}, ""))
	assert.Zero(t, env.count(t, &model.Enrollment{}, ""))
	assert.Zero(t, env.count(t, &model.Notification{}, "user_id = ?", learner.UserID))
}

func TestDeleteUserGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "admin", model.Admin)
	trainer := env.user(t, "trainer", model.Trainer)
	env.course(t, trainer, "Go")

	assert.ErrorIs(t, env.UsersSvc.DeleteUser(ctx, admin, admin.UserID), util.ErrValidation)
	assert.ErrorIs(t, env.UsersSvc.DeleteUser(ctx, admin, trainer.UserID), util.ErrValidation)
	assert.ErrorIs(t, env.UsersSvc.DeleteUser(ctx, admin, 999), util.ErrNotFound)
}

func TestToggleUserStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.user(t, "admin", model.Admin)
	learner := env.user(t, "learner", model.Learner)

	user, err := env.UsersSvc.ToggleUserStatus(ctx, admin, learner.UserID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	active, role, err := env.Users.AccessState(learner.UserID)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, model.Learner, role)

	_, err = env.UsersSvc.ToggleUserStatus(ctx, admin, admin.UserID)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestUpdateUserRoleIsVisibleToAccessCheck(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.user(t, "trainer", model.Trainer)

	demoted := model.Learner
	_, err := env.UsersSvc.UpdateUser(context.Background(), trainer.UserID, UserUpdate{Role: &demoted})
	require.NoError(t, err)

	active, role, err := env.Users.AccessState(trainer.UserID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, model.Learner, role)
	assert.NotEqual(t, trainer.Role, role)
}
