package service

import (
	"context"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProgressAndCourseAverage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	trainer := env.user(t, "trainer", model.Trainer)
	learner := env.user(t, "learner", model.Learner)
	course := env.course(t, trainer, "Go")
	m1 := env.module(t, course.ID, "m1")
	m2 := env.module(t, course.ID, "m2")
	env.enroll(t, learner, course.ID)

	avg, err := env.Learning.CourseAverage(ctx, learner, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	_, err = env.Learning.CompleteModule(ctx, learner, m1.ID)
	require.NoError(t, err)
	p, err := env.Learning.UpdateProgress(ctx, learner, ProgressUpdate{
		ModuleID:           m2.ID,
		CourseID:           &course.ID,
		ProgressPercentage: model.Float64Ptr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, course.ID, p.CourseID)

	avg, err = env.Learning.CourseAverage(ctx, learner, course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, avg, 1e-9)

	views, err := env.Learning.ModuleProgress(ctx, learner, course.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].IsCompleted)
	assert.Equal(t, 50.0, views[1].ProgressPercentage)
}

func TestUpdateProgressValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	trainer := env.user(t, "trainer", model.Trainer)
	learner := env.user(t, "learner", model.Learner)
	stranger := env.user(t, "stranger", model.Learner)
	course := env.course(t, trainer, "Go")
	other := env.course(t, trainer, "Rust")
	m := env.module(t, course.ID, "m1")
	env.enroll(t, learner, course.ID)

	_, err := env.Learning.UpdateProgress(ctx, learner, ProgressUpdate{ModuleID: m.ID, ProgressPercentage: model.Float64Ptr(150)})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.Learning.UpdateProgress(ctx, learner, ProgressUpdate{ModuleID: m.ID, CourseID: &other.ID, ProgressPercentage: model.Float64Ptr(10)})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.Learning.UpdateProgress(ctx, stranger, ProgressUpdate{ModuleID: m.ID, ProgressPercentage: model.Float64Ptr(10)})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.Learning.CompleteModule(ctx, learner, 999)
	assert.ErrorIs(t, err, util.ErrNotFound)

	assert.Zero(t, env.count(t, &model.ModuleProgress{}, ""))
}
