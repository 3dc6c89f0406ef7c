package repository

import (
	"math"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeForModuleIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)

	created, failures, err := repo.InitializeForModule(10, 1, []uint{1, 2, 2})
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, 2, created)

	// 已有进度的学员保持原值
	_, err = repo.Upsert(ProgressWrite{LearnerID: 1, ModuleID: 10, CourseID: 1, Percentage: model.Float64Ptr(40)})
	require.NoError(t, err)

	created, failures, err = repo.InitializeForModule(10, 1, []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, 1, created)

	rows, err := repo.FindByModule(10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 40.0, rows[0].Percentage())
	assert.Equal(t, 0.0, rows[2].Percentage())
	assert.False(t, rows[2].Completed())
}

func TestInitializeForModuleWithoutLearners(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))

	created, failures, err := repo.InitializeForModule(10, 1, nil)
	require.NoError(t, err)
	assert.Nil(t, failures)
	assert.Zero(t, created)
}

func TestResetForModuleOnlyTouchesThatModule(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))

	_, err := repo.MarkComplete(1, 10, 1)
	require.NoError(t, err)
	_, err = repo.MarkComplete(2, 10, 1)
	require.NoError(t, err)
	_, err = repo.MarkComplete(1, 11, 1)
	require.NoError(t, err)

	n, err := repo.ResetForModule(10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	reset, err := repo.FindByModule(10)
	require.NoError(t, err)
	for _, p := range reset {
		assert.Equal(t, 0.0, p.Percentage())
		assert.False(t, p.Completed())
	}

	other, err := repo.FindByLearnerAndModule(1, 11)
	require.NoError(t, err)
	assert.Equal(t, 100.0, other.Percentage())
	assert.True(t, other.Completed())
}

func TestUpsertRejectsOutOfRangePercentage(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))

	_, err := repo.Upsert(ProgressWrite{LearnerID: 1, ModuleID: 10, CourseID: 1, Percentage: model.Float64Ptr(30)})
	require.NoError(t, err)

	for _, bad := range []float64{150, -1, math.NaN()} {
		_, err := repo.Upsert(ProgressWrite{LearnerID: 1, ModuleID: 10, CourseID: 1, Percentage: model.Float64Ptr(bad)})
		assert.ErrorIs(t, err, util.ErrValidation)
	}

	p, err := repo.FindByLearnerAndModule(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 30.0, p.Percentage())
}

func TestUpsertKeepsUnsuppliedFieldsAndOverwritesCourse(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))

	_, err := repo.Upsert(ProgressWrite{LearnerID: 1, ModuleID: 10, CourseID: 1, Percentage: model.Float64Ptr(60), IsCompleted: model.BoolPtr(false)})
	require.NoError(t, err)

	p, err := repo.Upsert(ProgressWrite{LearnerID: 1, ModuleID: 10, CourseID: 2, IsCompleted: model.BoolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 60.0, p.Percentage())
	assert.True(t, p.Completed())
	assert.EqualValues(t, 2, p.CourseID)

	var count int64
	require.NoError(t, repo.DB.Model(&model.ModuleProgress{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAverageProgressForLearnerCourse(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)

	trainer := seedUser(t, db, "trainer", model.Trainer)
	learner := seedUser(t, db, "learner", model.Learner)
	course := seedCourse(t, db, trainer.ID, "Go")
	m1 := seedModule(t, db, course.ID, "m1")
	m2 := seedModule(t, db, course.ID, "m2")

	avg, err := repo.AverageProgressForLearnerCourse(learner.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)

	_, err = repo.MarkComplete(learner.ID, m1.ID, course.ID)
	require.NoError(t, err)
	_, err = repo.Upsert(ProgressWrite{LearnerID: learner.ID, ModuleID: m2.ID, CourseID: course.ID, Percentage: model.Float64Ptr(50)})
	require.NoError(t, err)

	avg, err = repo.AverageProgressForLearnerCourse(learner.ID, course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, avg, 1e-9)
}

func TestAverageProgressTreatsNullAsZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)

	trainer := seedUser(t, db, "trainer", model.Trainer)
	learner := seedUser(t, db, "learner", model.Learner)
	course := seedCourse(t, db, trainer.ID, "Go")
	m1 := seedModule(t, db, course.ID, "m1")
	m2 := seedModule(t, db, course.ID, "m2")

	_, err := repo.Upsert(ProgressWrite{LearnerID: learner.ID, ModuleID: m1.ID, CourseID: course.ID, Percentage: model.Float64Ptr(80)})
	require.NoError(t, err)
	_, err = repo.Upsert(ProgressWrite{LearnerID: learner.ID, ModuleID: m2.ID, CourseID: course.ID, IsCompleted: model.BoolPtr(false)})
	require.NoError(t, err)

	avg, err := repo.AverageProgressForLearnerCourse(learner.ID, course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, avg, 1e-9)
}

func TestRemoveOperationsWithNoRows(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))

	n, err := repo.RemoveByModule(99)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.RemoveByLearnerAndCourse(1, 99)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.RemoveByCourse(99)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRemoveByLearnerAndCourseLeavesOthers(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)

	trainer := seedUser(t, db, "trainer", model.Trainer)
	course := seedCourse(t, db, trainer.ID, "Go")
	other := seedCourse(t, db, trainer.ID, "Rust")
	m := seedModule(t, db, course.ID, "m")
	om := seedModule(t, db, other.ID, "om")

	_, err := repo.MarkComplete(1, m.ID, course.ID)
	require.NoError(t, err)
	_, err = repo.MarkComplete(1, om.ID, other.ID)
	require.NoError(t, err)
	_, err = repo.MarkComplete(2, m.ID, course.ID)
	require.NoError(t, err)

	n, err := repo.RemoveByLearnerAndCourse(1, course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.FindByLearnerAndModule(1, om.ID)
	assert.NoError(t, err)
	_, err = repo.FindByLearnerAndModule(2, m.ID)
	assert.NoError(t, err)
}

func TestRemoveByCourseClearsEveryLearner(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	modules := NewModuleRepository(db)

	trainer := seedUser(t, db, "trainer", model.Trainer)
	course := seedCourse(t, db, trainer.ID, "Go")
	other := seedCourse(t, db, trainer.ID, "Rust")
	m1 := seedModule(t, db, course.ID, "m1")
	m2 := seedModule(t, db, course.ID, "m2")
	om := seedModule(t, db, other.ID, "om")

	for _, learner := range []uint{1, 2} {
		_, err := repo.MarkComplete(learner, m1.ID, course.ID)
		require.NoError(t, err)
		_, err = repo.MarkComplete(learner, om.ID, other.ID)
		require.NoError(t, err)
	}
	// course_id 与模块不一致的脏数据也按模块归属清理
	require.NoError(t, db.Create(&model.ModuleProgress{LearnerID: 3, ModuleID: m2.ID, CourseID: other.ID}).Error)

	n, err := repo.RemoveByCourse(course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	deleted, err := modules.DeleteByCourse(course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	rows, err := repo.FindByModule(om.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	left, err := modules.FindByCourse(other.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
