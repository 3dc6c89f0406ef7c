package repository

import (
	"fmt"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/pkg/database"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCourse(t *testing.T, db *gorm.DB, trainerID uint, name string) *model.Course {
	t.Helper()
	c := &model.Course{TrainerID: trainerID, Name: name, Visibility: model.DefaultVisibility}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedModule(t *testing.T, db *gorm.DB, courseID uint, name string) *model.Module {
	t.Helper()
	m := &model.Module{CourseID: courseID, Name: name}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedEnrollment(t *testing.T, db *gorm.DB, learnerID, courseID uint) *model.Enrollment {
	t.Helper()
	e := &model.Enrollment{LearnerID: learnerID, CourseID: courseID, EnrolledAt: time.Now(), Status: model.EnrollmentActive}
	require.NoError(t, db.Create(e).Error)
	return e
}
