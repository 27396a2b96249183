package enrollment

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lms/models"
	courseModels "lms/models/course"
	"lms/services/certificate"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &courseModels.Course{}, &courseModels.Enrollment{}))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	return NewService(db, &certificate.LocalGenerator{}), db
}

var certsEnabled = courseModels.CertificateEligibility{
	Enabled: true,
	Criteria: courseModels.CertificateCriteria{
		MinAttendance:      70,
		MinAssignmentScore: 60,
		MinTestScore:       60,
	},
}

func seedCourse(t *testing.T, db *gorm.DB, published bool, sessionCount int, eligibility courseModels.CertificateEligibility) *courseModels.Course {
	t.Helper()

	sessions := make([]courseModels.Session, 0, sessionCount)
	for i := 0; i < sessionCount; i++ {
		sessions = append(sessions, courseModels.Session{
			SessionID: fmt.Sprintf("sess-%d", i+1),
			Title:     fmt.Sprintf("Session %d", i+1),
		})
	}

	course := courseModels.Course{
		Title:                  "Distributed Systems",
		Instructor:             "Ada Lovelace",
		IsPublished:            published,
		Sessions:               datatypes.NewJSONSlice(sessions),
		CertificateEligibility: datatypes.NewJSONType(eligibility),
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{FirstName: "Grace", LastName: "Hopper", Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestCreateEnrollment(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 3, certsEnabled)

	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	assert.Equal(t, courseModels.StatusActive, enrollment.Status)
	assert.False(t, enrollment.EnrolledAt.IsZero())
	require.Len(t, enrollment.Attendance, 3)
	for _, entry := range enrollment.Attendance {
		assert.False(t, entry.Attended)
		assert.Nil(t, entry.AttendedAt)
	}

	var reloaded courseModels.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.EqualValues(t, 1, reloaded.EnrollmentCount)
}

func TestCreateEnrollmentDuplicate(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 2, certsEnabled)

	_, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	_, err = svc.CreateEnrollment(1, course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	// Same user on another course is fine
	other := seedCourse(t, db, true, 2, certsEnabled)
	_, err = svc.CreateEnrollment(1, other.ID)
	assert.NoError(t, err)
}

func TestCreateEnrollmentUnpublishedCourse(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, false, 2, certsEnabled)

	_, err := svc.CreateEnrollment(1, course.ID)
	assert.ErrorIs(t, err, ErrCourseNotPublished)

	var count int64
	db.Model(&courseModels.Enrollment{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCreateEnrollmentMissingCourse(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateEnrollment(1, 999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGetEnrollmentRoundTrip(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 2, certsEnabled)

	created, err := svc.CreateEnrollment(7, course.ID)
	require.NoError(t, err)

	fetched, err := svc.GetEnrollment(created.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusActive, fetched.Status)
	assert.False(t, fetched.CertificateIssued)

	_, err = svc.GetEnrollment(999)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestUpdateStatus(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 2, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	// Completed stamps completed_at once
	updated, err := svc.UpdateStatus(enrollment.ID, courseModels.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	firstStamp := *updated.CompletedAt

	updated, err = svc.UpdateStatus(enrollment.ID, courseModels.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, firstStamp.Unix(), updated.CompletedAt.Unix())

	// Any status may follow any other, including leaving completed
	updated, err = svc.UpdateStatus(enrollment.ID, courseModels.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusSuspended, updated.Status)

	_, err = svc.UpdateStatus(enrollment.ID, "expelled")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestMarkAttendance(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 4, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	updated, err := svc.MarkAttendance(enrollment.ID, "sess-1", true)
	require.NoError(t, err)
	assert.True(t, updated.Attendance[0].Attended)
	assert.NotNil(t, updated.Attendance[0].AttendedAt)

	// Flipping back clears the timestamp
	updated, err = svc.MarkAttendance(enrollment.ID, "sess-1", false)
	require.NoError(t, err)
	assert.False(t, updated.Attendance[0].Attended)
	assert.Nil(t, updated.Attendance[0].AttendedAt)

	// Sessions added to the course later have no entry on this enrollment
	_, err = svc.MarkAttendance(enrollment.ID, "sess-99", true)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAttendancePercentage(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 4, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	for _, sessionID := range []string{"sess-1", "sess-2", "sess-3"} {
		_, err = svc.MarkAttendance(enrollment.ID, sessionID, true)
		require.NoError(t, err)
	}

	fetched, err := svc.GetEnrollment(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, fetched.AttendancePercentage())
	assert.Equal(t, 3, fetched.AttendedSessions())
}

func TestAddAssessment(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 1, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	updated, err := svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type:     courseModels.AssessmentAssignment,
		Title:    "Paxos write-up",
		Score:    42,
		MaxScore: 50,
	})
	require.NoError(t, err)
	require.Len(t, updated.Assessments, 1)
	assert.Equal(t, courseModels.AssessmentAssignment, updated.Assessments[0].Type)
	assert.False(t, updated.Assessments[0].SubmittedAt.IsZero())
	assert.False(t, updated.Assessments[0].GradedAt.IsZero())

	// Append-only
	updated, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type:     courseModels.AssessmentQuiz,
		Title:    "Week 2 quiz",
		Score:    8,
		MaxScore: 10,
	})
	require.NoError(t, err)
	assert.Len(t, updated.Assessments, 2)

	assert.InDelta(t, 82.0, updated.AverageScore(), 0.01)
}

func TestListEnrollments(t *testing.T) {
	svc, db := newTestService(t)
	courseA := seedCourse(t, db, true, 1, certsEnabled)
	courseB := seedCourse(t, db, true, 1, certsEnabled)
	user := seedUser(t, db, "grace@example.com")

	first, err := svc.CreateEnrollment(user.ID, courseA.ID)
	require.NoError(t, err)
	second, err := svc.CreateEnrollment(user.ID, courseB.ID)
	require.NoError(t, err)
	third, err := svc.CreateEnrollment(42, courseA.ID)
	require.NoError(t, err)

	// Force a stable newest-first order
	base := time.Now()
	require.NoError(t, db.Model(first).UpdateColumn("enrolled_at", base.Add(-2*time.Hour)).Error)
	require.NoError(t, db.Model(second).UpdateColumn("enrolled_at", base.Add(-1*time.Hour)).Error)
	require.NoError(t, db.Model(third).UpdateColumn("enrolled_at", base).Error)

	items, total, err := svc.ListEnrollments(ListFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, third.ID, items[0].ID)
	assert.Equal(t, first.ID, items[2].ID)

	// User projection present when the user exists, nil otherwise
	require.NotNil(t, items[2].User)
	assert.Equal(t, "grace@example.com", items[2].User.Email)
	assert.Nil(t, items[0].User)
	require.NotNil(t, items[0].Course)
	assert.Equal(t, courseA.Title, items[0].Course.Title)

	// Filters compose with AND
	items, total, err = svc.ListEnrollments(ListFilter{UserID: user.ID, CourseID: courseA.ID}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)

	_, err = svc.UpdateStatus(second.ID, courseModels.StatusDropped)
	require.NoError(t, err)
	items, total, err = svc.ListEnrollments(ListFilter{Status: courseModels.StatusDropped}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, second.ID, items[0].ID)
}

func TestUserEnrollments(t *testing.T) {
	svc, db := newTestService(t)
	courseA := seedCourse(t, db, true, 1, certsEnabled)
	courseB := seedCourse(t, db, true, 1, certsEnabled)

	first, err := svc.CreateEnrollment(5, courseA.ID)
	require.NoError(t, err)
	second, err := svc.CreateEnrollment(5, courseB.ID)
	require.NoError(t, err)
	_, err = svc.CreateEnrollment(6, courseA.ID)
	require.NoError(t, err)

	base := time.Now()
	require.NoError(t, db.Model(first).UpdateColumn("enrolled_at", base.Add(-time.Hour)).Error)
	require.NoError(t, db.Model(second).UpdateColumn("enrolled_at", base).Error)

	items, err := svc.UserEnrollments(5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	require.NotNil(t, items[0].Course)
	assert.Equal(t, courseB.ID, items[0].Course.ID)
}

func TestDeleteEnrollment(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 1, certsEnabled)

	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEnrollment(enrollment.ID))

	var reloaded courseModels.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.EqualValues(t, 0, reloaded.EnrollmentCount)

	_, err = svc.GetEnrollment(enrollment.ID)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	// Deleting a missing enrollment touches no counter
	err = svc.DeleteEnrollment(999)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.EqualValues(t, 0, reloaded.EnrollmentCount)
}
