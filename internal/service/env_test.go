package service

import (
	"context"
	"errors"
	"fmt"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/pkg/database"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type fakeStore struct {
	uploads []string
	deleted []string
	err     error
}

func (s *fakeStore) Upload(_ context.Context, att *Attachment) (*StoredAttachment, error) {
	if s.err != nil {
		return nil, s.err
	}
	key := fmt.Sprintf("modules/%d-%s", len(s.uploads)+1, att.Filename)
	s.uploads = append(s.uploads, key)
	return &StoredAttachment{Key: key, URL: "/uploads/" + key}, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

var errMailDown = errors.New("smtp: connection refused")

type testEnv struct {
	DB     *gorm.DB
	Mailer *fakeMailer
	Store  *fakeStore

	Users         *repository.UserRepository
	Progress      *repository.ProgressRepository
	Notifications *repository.NotificationRepository

	Notifier    *NotificationService
	Courses     *CourseService
	Modules     *ModuleService
	Enrollments *EnrollmentService
	Learning    *ProgressService
	Feedback    *FeedbackService
	Analytics   *AnalyticsService
	UsersSvc    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
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

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	mailer := &fakeMailer{}
	store := &fakeStore{}
	notifier := NewNotificationService(notificationRepo, mailer, "admin@example.com")

	return &testEnv{
		DB:            db,
		Mailer:        mailer,
		Store:         store,
		Users:         userRepo,
		Progress:      progressRepo,
		Notifications: notificationRepo,
		Notifier:      notifier,
		Courses:       NewCourseService(db, courseRepo, moduleRepo, enrollmentRepo, progressRepo, feedbackRepo, notificationRepo, userRepo, notifier),
		Modules:       NewModuleService(db, courseRepo, moduleRepo, enrollmentRepo, progressRepo, notifier, store),
		Enrollments:   NewEnrollmentService(db, courseRepo, enrollmentRepo, progressRepo, feedbackRepo),
		Learning:      NewProgressService(moduleRepo, enrollmentRepo, progressRepo),
		Feedback:      NewFeedbackService(courseRepo, enrollmentRepo, feedbackRepo),
		Analytics:     NewAnalyticsService(courseRepo, analyticsRepo),
		UsersSvc:      NewUserService(db, userRepo, courseRepo, enrollmentRepo, progressRepo, feedbackRepo, notificationRepo),
	}
}

func (e *testEnv) user(t *testing.T, name string, role model.UserRole) model.Caller {
	t.Helper()
	u := &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.DB.Create(u).Error)
	return model.Caller{UserID: u.ID, Role: role, Email: u.Email}
}

func (e *testEnv) course(t *testing.T, trainer model.Caller, name string) *model.Course {
	t.Helper()
	c := &model.Course{TrainerID: trainer.UserID, Name: name, Visibility: model.DefaultVisibility}
	require.NoError(t, e.DB.Create(c).Error)
	return c
}

func (e *testEnv) module(t *testing.T, courseID uint, name string) *model.Module {
	t.Helper()
	m := &model.Module{CourseID: courseID, Name: name}
	require.NoError(t, e.DB.Create(m).Error)
	return m
}

func (e *testEnv) enroll(t *testing.T, learner model.Caller, courseID uint) *model.Enrollment {
	t.Helper()
	en := &model.Enrollment{LearnerID: learner.UserID, CourseID: courseID, EnrolledAt: time.Now(), Status: model.EnrollmentActive}
	require.NoError(t, e.DB.Create(en).Error)
	return en
}

func (e *testEnv) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.DB.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func progressWrite(learnerID, moduleID, courseID uint, pct float64) repository.ProgressWrite {
	return repository.ProgressWrite{
		LearnerID:  learnerID,
		ModuleID:   moduleID,
		CourseID:   courseID,
		Percentage: model.Float64Ptr(pct),
	}
}

var errDiskFull = errors.New("disk quota exceeded")

// failCreates 让满足 match 的插入失败，模拟单条写入出错
func (e *testEnv) failCreates(t *testing.T, name string, match func(dest interface{}) bool) {
	t.Helper()
	require.NoError(t, e.DB.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if match(tx.Statement.Dest) {
			tx.AddError(errDiskFull)
		}
	}))
}
