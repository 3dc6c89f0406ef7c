package repository

import (
	"mini_lms_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTakedown(t *testing.T, db *gorm.DB, userID uint, courseID *uint, courseName string) {
	t.Helper()
	n := &model.Notification{
		UserID:   userID,
		Type:     model.NotificationTakedownRequested,
		Message:  "Trainer 't@example.com' requested takedown of '" + courseName + "'. Reason: old",
		CourseID: courseID,
	}
	require.NoError(t, db.Create(n).Error)
}

func TestDeleteTakedownsMatchesCourseNameLiterally(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	admin := seedUser(t, db, "admin", model.Admin)
	trainer := seedUser(t, db, "trainer", model.Trainer)
	underscore := seedCourse(t, db, trainer.ID, "C_")
	sharp := seedCourse(t, db, trainer.ID, "C#")
	percent := seedCourse(t, db, trainer.ID, "%")

	seedTakedown(t, db, admin.ID, &sharp.ID, sharp.Name)
	// 旧记录没有 course_id，只能靠消息里的课程名匹配
	seedTakedown(t, db, admin.ID, nil, sharp.Name)

	n, err := repo.DeleteTakedownsForCourse(underscore.ID, underscore.Name)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteTakedownsForCourse(percent.ID, percent.Name)
	require.NoError(t, err)
	assert.Zero(t, n)

	var left int64
	require.NoError(t, db.Model(&model.Notification{}).Where("type = ?", model.NotificationTakedownRequested).Count(&left).Error)
	assert.EqualValues(t, 2, left)

	n, err = repo.DeleteTakedownsForCourse(sharp.ID, sharp.Name)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestDeleteTakedownsIgnoresOtherCourseIDWithSameName(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	admin := seedUser(t, db, "admin", model.Admin)
	trainer := seedUser(t, db, "trainer", model.Trainer)
	first := seedCourse(t, db, trainer.ID, "Go")
	second := seedCourse(t, db, trainer.ID, "Go")

	seedTakedown(t, db, admin.ID, &first.ID, first.Name)
	seedTakedown(t, db, admin.ID, &second.ID, second.Name)

	n, err := repo.DeleteTakedownsForCourse(first.ID, first.Name)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var left int64
	require.NoError(t, db.Model(&model.Notification{}).Where("course_id = ?", second.ID).Count(&left).Error)
	assert.EqualValues(t, 1, left)
}
