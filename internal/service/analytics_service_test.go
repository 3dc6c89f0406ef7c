package service

import (
	"context"
	"mini_lms_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerCourseAnalyticsWithoutCourses(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.user(t, "trainer", model.Trainer)

	result, err := env.Analytics.PerCourseAnalytics(context.Background(), trainer.UserID)
	require.NoError(t, err)
	assert.Zero(t, result.TotalCourses)
	assert.Zero(t, result.TotalLearners)
	assert.NotNil(t, result.Courses)
	assert.Empty(t, result.Courses)

	roster, err := env.Analytics.LearnerRosterForTrainer(context.Background(), trainer.UserID)
	require.NoError(t, err)
	assert.NotNil(t, roster)
	assert.Empty(t, roster)
}

func TestPerCourseAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	trainer := env.user(t, "trainer", model.Trainer)
	other := env.user(t, "other", model.Trainer)
	alice := env.user(t, "alice", model.Learner)
	bob := env.user(t, "bob", model.Learner)
	goCourse := env.course(t, trainer, "Go")
	empty := env.course(t, trainer, "Empty")
	foreign := env.course(t, other, "Foreign")
	m1 := env.module(t, goCourse.ID, "m1")
	m2 := env.module(t, goCourse.ID, "m2")

	env.enroll(t, alice, goCourse.ID)
	env.enroll(t, bob, goCourse.ID)
	env.enroll(t, alice, foreign.ID)

	_, err := env.Progress.MarkComplete(alice.UserID, m1.ID, goCourse.ID)
	require.NoError(t, err)
	_, err = env.Progress.Upsert(progressWrite(alice.UserID, m2.ID, goCourse.ID, 50))
	require.NoError(t, err)
	_, err = env.Progress.Upsert(progressWrite(bob.UserID, m1.ID, goCourse.ID, 30))
	require.NoError(t, err)

	require.NoError(t, env.DB.Create(&model.Feedback{LearnerID: alice.UserID, CourseID: goCourse.ID, Rating: 5, SubmittedAt: time.Now()}).Error)
	require.NoError(t, env.DB.Create(&model.Feedback{LearnerID: bob.UserID, CourseID: goCourse.ID, Rating: 2, SubmittedAt: time.Now()}).Error)

	result, err := env.Analytics.PerCourseAnalytics(ctx, trainer.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCourses)
	assert.Equal(t, 2, result.TotalLearners)
	require.Len(t, result.Courses, 2)

	byID := map[uint]model.CourseAnalytics{}
	for _, c := range result.Courses {
		byID[c.ID] = c
	}
	assert.Equal(t, 2, byID[goCourse.ID].LearnerCount)
	assert.InDelta(t, 3.5, byID[goCourse.ID].AvgRating, 1e-9)
	assert.InDelta(t, 60.0, byID[goCourse.ID].AvgProgress, 1e-9)

	assert.Equal(t, 0, byID[empty.ID].LearnerCount)
	assert.Equal(t, 0.0, byID[empty.ID].AvgRating)
	assert.Equal(t, 0.0, byID[empty.ID].AvgProgress)
}

func TestLearnerRosterForTrainer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	trainer := env.user(t, "trainer", model.Trainer)
	alice := env.user(t, "alice", model.Learner)
	bob := env.user(t, "bob", model.Learner)
	goCourse := env.course(t, trainer, "Go")
	rust := env.course(t, trainer, "Rust")
	m := env.module(t, goCourse.ID, "m1")

	env.enroll(t, bob, rust.ID)
	env.enroll(t, alice, goCourse.ID)
	env.enroll(t, alice, goCourse.ID)
	env.enroll(t, alice, rust.ID)

	_, err := env.Progress.Upsert(progressWrite(alice.UserID, m.ID, goCourse.ID, 80))
	require.NoError(t, err)

	roster, err := env.Analytics.LearnerRosterForTrainer(ctx, trainer.UserID)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	assert.Equal(t, bob.UserID, roster[0].LearnerID)
	require.Len(t, roster[0].Courses, 1)
	assert.Equal(t, "Rust", roster[0].Courses[0].CourseName)
	assert.Equal(t, 0.0, roster[0].Courses[0].Progress)

	assert.Equal(t, alice.UserID, roster[1].LearnerID)
	assert.Equal(t, "alice@example.com", roster[1].LearnerEmail)
	require.Len(t, roster[1].Courses, 2)
	assert.Equal(t, goCourse.ID, roster[1].Courses[0].CourseID)
	assert.InDelta(t, 80.0, roster[1].Courses[0].Progress, 1e-9)
	assert.Equal(t, rust.ID, roster[1].Courses[1].CourseID)
}
