package service

import (
	"bytes"
	"context"
	"errors"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/util"
	"mini_lms_backend/pkg/monitoring"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateModuleInitializesProgressForEnrolledLearners(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trainer := env.user(t, "trainer", model.Trainer)
	alice := env.user(t, "alice", model.Learner)
	bob := env.user(t, "bob", model.Learner)
	outsider := env.user(t, "outsider", model.Learner)
	course := env.course(t, trainer, "Go Basics")
	other := env.course(t, trainer, "Other")
	env.enroll(t, alice, course.ID)
	env.enroll(t, alice, course.ID)
	env.enroll(t, bob, course.ID)
	env.enroll(t, outsider, other.ID)

	module, err := env.Modules.CreateModule(ctx, trainer, course.ID, ModuleInput{Title: "Intro", Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, course.ID, module.CourseID)
	assert.Nil(t, module.FilePath)

	rows, err := env.Progress.FindByModule(module.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, p := range rows {
		assert.Equal(t, course.ID, p.CourseID)
		assert.Equal(t, 0.0, p.Percentage())
		assert.False(t, p.Completed())
	}
	assert.ElementsMatch(t, []uint{alice.UserID, bob.UserID}, []uint{rows[0].LearnerID, rows[1].LearnerID})

	notes, err := env.Notifications.FindByUser(trainer.UserID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationModuleUpdate, notes[0].Type)
	assert.Equal(t, "Module 'Intro' added to course 'Go Basics'.", notes[0].Message)

	sent := env.Mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "trainer@example.com", sent[0].To)
}

func TestCreateModuleStoresAttachment(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.user(t, "trainer", model.Trainer)
	course := env.course(t, trainer, "Go")

	module, err := env.Modules.CreateModule(context.Background(), trainer, course.ID, ModuleInput{
		Title: "Slides",
		Attachment: &Attachment{
			Filename:    "slides.pdf",
			ContentType: "application/pdf",
			Size:        3,
			Reader:      bytes.NewReader([]byte("pdf")),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, module.FilePath)
	assert.Equal(t, "/uploads/modules/1-slides.pdf", *module.FilePath)
}

func TestCreateModuleUploadFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.user(t, "trainer", model.Trainer)
	learner := env.user(t, "learner", model.Learner)
	course := env.course(t, trainer, "Go")
	env.enroll(t, learner, course.ID)
	env.Store.err = errors.New("bucket unavailable")

	_, err := env.Modules.CreateModule(context.Background(), trainer, course.ID, ModuleInput{
		Title:      "Slides",
		Attachment: &Attachment{Filename: "a.pdf", Reader: bytes.NewReader(nil)},
	})
	assert.ErrorIs(t, err, util.ErrDependencyFailure)

	assert.Zero(t, env.count(t, &model.Module{}, ""))
	assert.Zero(t, env.count(t, &model.ModuleProgress{}, ""))
	assert.Zero(t, env.count(t, &model.Notification{}, ""))
	assert.Empty(t, env.Mailer.Sent())
}

func TestCreateModuleRejectsInvalidCallers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner", model.Trainer)
	stranger := env.user(t, "stranger", model.Trainer)
	course := env.course(t, owner, "Go")

	_, err := env.Modules.CreateModule(ctx, stranger, course.ID, ModuleInput{Title: "x"})
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.Modules.CreateModule(ctx, owner, 999, ModuleInput{Title: "x"})
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = env.Modules.CreateModule(ctx, owner, course.ID, ModuleInput{Title: "  "})
	assert.ErrorIs(t, err, util.ErrValidation)

	assert.Zero(t, env.count(t, &model.Module{}, ""))
}

func TestCreateModuleSucceedsWhenEmailFails(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.user(t, "trainer", model.Trainer)
	course := env.course(t, trainer, "Go")
	env.Mailer.err = errMailDown

	counter := monitoring.HookFailures.WithLabelValues("course_update_email")
	before := testutil.ToFloat64(counter)

	module, err := env.Modules.CreateModule(context.Background(), trainer, course.ID, ModuleInput{Title: "Intro"})
	require.NoError(t, err)
	assert.NotZero(t, module.ID)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.EqualValues(t, 1, env.count(t, &model.Notification{}, "user_id = ?", trainer.UserID))
}

func TestCreateModuleSkipsLearnerWhoseProgressInsertFails(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.user(t, "trainer", model.Trainer)
	alice := env.user(t, "alice", model.Learner)
	bob := env.user(t, "bob", model.Learner)
	carol := env.user(t, "carol", model.Learner)
	course := env.course(t, trainer, "Go")
	for _, l := range []model.Caller{alice, bob, carol} {
		env.enroll(t, l, course.ID)
	}
	env.failCreates(t, "fail_bob_progress", func(dest interface{}) bool {
		p, ok := dest.(*model.ModuleProgress)
		return ok && p.LearnerID == bob.UserID
	})

	counter := monitoring.FanoutFailures.WithLabelValues("module_progress_init")
	before := testutil.ToFloat64(counter)

	module, err := env.Modules.CreateModule(context.Background(), trainer, course.ID, ModuleInput{Title: "Intro"})
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	rows, err := env.Progress.FindByModule(module.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.ElementsMatch(t, []uint{alice.UserID, carol.UserID}, []uint{rows[0].LearnerID, rows[1].LearnerID})
	assert.EqualValues(t, 1, env.count(t, &model.Module{}, "id = ?", module.ID))
}

func TestUpdateModuleResetsEveryLearnersProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	trainer := env.user(t, "trainer", model.Trainer)
	alice := env.user(t, "alice", model.Learner)
	bob := env.user(t, "bob", model.Learner)
	course := env.course(t, trainer, "Go")
	module := env.module(t, course.ID, "Intro")
	untouched := env.module(t, course.ID, "Advanced")

	_, err := env.Progress.MarkComplete(alice.UserID, module.ID, course.ID)
	require.NoError(t, err)
	_, err = env.Progress.Upsert(progressWrite(bob.UserID, module.ID, course.ID, 40))
	require.NoError(t, err)
	_, err = env.Progress.MarkComplete(alice.UserID, untouched.ID, course.ID)
	require.NoError(t, err)

	updated, err := env.Modules.UpdateModule(ctx, trainer, module.ID, ModuleInput{Title: "Intro v2", Content: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Intro v2", updated.Name)

	rows, err := env.Progress.FindByModule(module.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, p := range rows {
		assert.Equal(t, 0.0, p.Percentage())
		assert.False(t, p.Completed())
	}

	other, err := env.Progress.FindByLearnerAndModule(alice.UserID, untouched.ID)
	require.NoError(t, err)
	assert.True(t, other.Completed())

	notes, err := env.Notifications.FindByUser(trainer.UserID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Module 'Intro v2' updated in course 'Go'.", notes[0].Message)
}

func TestUpdateModuleMissing(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.user(t, "trainer", model.Trainer)

	_, err := env.Modules.UpdateModule(context.Background(), trainer, 42, ModuleInput{Title: "x"})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestDeleteModuleRemovesProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	trainer := env.user(t, "trainer", model.Trainer)
	learner := env.user(t, "learner", model.Learner)
	course := env.course(t, trainer, "Go")
	module := env.module(t, course.ID, "Intro")
	kept := env.module(t, course.ID, "Kept")

	_, err := env.Progress.MarkComplete(learner.UserID, module.ID, course.ID)
	require.NoError(t, err)
	_, err = env.Progress.MarkComplete(learner.UserID, kept.ID, course.ID)
	require.NoError(t, err)

	stranger := env.user(t, "stranger", model.Trainer)
	assert.ErrorIs(t, env.Modules.DeleteModule(ctx, stranger, module.ID), util.ErrForbidden)

	require.NoError(t, env.Modules.DeleteModule(ctx, trainer, module.ID))

	assert.Zero(t, env.count(t, &model.Module{}, "id = ?", module.ID))
	assert.Zero(t, env.count(t, &model.ModuleProgress{}, "module_id = ?", module.ID))
	assert.EqualValues(t, 1, env.count(t, &model.ModuleProgress{}, "module_id = ?", kept.ID))

	notes, err := env.Notifications.FindByUser(trainer.UserID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Module 'Intro' deleted from course 'Go'.", notes[0].Message)

	assert.ErrorIs(t, env.Modules.DeleteModule(ctx, trainer, module.ID), util.ErrNotFound)
}

func TestListModulesWithProgressDefaultsToZero(t *testing.T) {
	env := newTestEnv(t)
	trainer := env.user(t, "trainer", model.Trainer)
	learner := env.user(t, "learner", model.Learner)
	course := env.course(t, trainer, "Go")
	m1 := env.module(t, course.ID, "m1")
	env.module(t, course.ID, "m2")

	_, err := env.Progress.Upsert(progressWrite(learner.UserID, m1.ID, course.ID, 70))
	require.NoError(t, err)

	items, err := env.Modules.ListModulesWithProgress(context.Background(), learner, course.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 70.0, items[0].ProgressPercentage)
	assert.Equal(t, 0.0, items[1].ProgressPercentage)
	assert.False(t, items[1].IsCompleted)
}
