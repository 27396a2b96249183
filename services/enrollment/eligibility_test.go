package enrollment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	courseModels "lms/models/course"
)

var certsDisabled = courseModels.CertificateEligibility{Enabled: false}

func TestCheckEligibilityCertificatesDisabled(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 2, certsDisabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	// Perfect attendance changes nothing when the course offers no certificates
	_, err = svc.MarkAttendance(enrollment.ID, "sess-1", true)
	require.NoError(t, err)
	_, err = svc.MarkAttendance(enrollment.ID, "sess-2", true)
	require.NoError(t, err)

	result, err := svc.CheckEligibility(enrollment.ID)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.Equal(t, []string{"Course does not offer certificates"}, result.Reasons)
	assert.Nil(t, result.Metrics)
}

func TestCheckEligibilityEmptySubsetsExempted(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 5, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	// 80% attendance, above the 70% threshold
	for i := 1; i <= 4; i++ {
		_, err = svc.MarkAttendance(enrollment.ID, fmt.Sprintf("sess-%d", i), true)
		require.NoError(t, err)
	}

	// One assignment at 50%, below the 60% threshold; zero tests
	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type:     courseModels.AssessmentAssignment,
		Title:    "Essay",
		Score:    50,
		MaxScore: 100,
	})
	require.NoError(t, err)

	result, err := svc.CheckEligibility(enrollment.ID)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "Assignment score")

	require.NotNil(t, result.Metrics)
	assert.InDelta(t, 80.0, result.Metrics.AttendancePercentage, 0.01)
	assert.Equal(t, "50.00", result.Metrics.AverageAssignmentScore)
	assert.Equal(t, "0.00", result.Metrics.AverageTestScore)
	assert.Equal(t, certsEnabled.Criteria, result.Metrics.Required)
}

func TestCheckEligibilityQuizzesDoNotGate(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 1, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	_, err = svc.MarkAttendance(enrollment.ID, "sess-1", true)
	require.NoError(t, err)

	// Quizzes and projects are not among the gated types
	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type:     courseModels.AssessmentQuiz,
		Title:    "Pop quiz",
		Score:    1,
		MaxScore: 10,
	})
	require.NoError(t, err)

	result, err := svc.CheckEligibility(enrollment.ID)
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	assert.Empty(t, result.Reasons)
}

func TestCheckEligibilityAllCriteriaFail(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 4, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type: courseModels.AssessmentAssignment, Title: "Essay", Score: 30, MaxScore: 100,
	})
	require.NoError(t, err)
	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type: courseModels.AssessmentTest, Title: "Midterm", Score: 40, MaxScore: 100,
	})
	require.NoError(t, err)

	result, err := svc.CheckEligibility(enrollment.ID)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	require.Len(t, result.Reasons, 3)
	assert.Contains(t, result.Reasons[0], "Attendance")
	assert.Contains(t, result.Reasons[1], "Assignment score")
	assert.Contains(t, result.Reasons[2], "Test score")
}

func issueReadyEnrollment(t *testing.T, svc *Service, courseID uint, userID uint) *courseModels.Enrollment {
	t.Helper()

	enrollment, err := svc.CreateEnrollment(userID, courseID)
	require.NoError(t, err)
	_, err = svc.MarkAttendance(enrollment.ID, "sess-1", true)
	require.NoError(t, err)
	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type: courseModels.AssessmentAssignment, Title: "Essay", Score: 90, MaxScore: 100,
	})
	require.NoError(t, err)
	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type: courseModels.AssessmentTest, Title: "Final", Score: 80, MaxScore: 100,
	})
	require.NoError(t, err)
	return enrollment
}

func TestIssueCertificate(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 1, certsEnabled)
	enrollment := issueReadyEnrollment(t, svc, course.ID, 1)

	issued, err := svc.IssueCertificate(enrollment.ID)
	require.NoError(t, err)
	assert.True(t, issued.CertificateIssued)
	require.NotNil(t, issued.CertificateIssuedAt)
	assert.NotEmpty(t, issued.CertificateNumber)
	assert.Equal(t, fmt.Sprintf("/certificates/certificate-%d.pdf", enrollment.ID), issued.CertificateURL)
}

func TestIssueCertificateTwice(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 1, certsEnabled)
	enrollment := issueReadyEnrollment(t, svc, course.ID, 1)

	issued, err := svc.IssueCertificate(enrollment.ID)
	require.NoError(t, err)
	firstStamp := *issued.CertificateIssuedAt

	_, err = svc.IssueCertificate(enrollment.ID)
	assert.ErrorIs(t, err, ErrCertificateIssued)

	reloaded, err := svc.GetEnrollment(enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CertificateIssuedAt)
	assert.Equal(t, firstStamp.Unix(), reloaded.CertificateIssuedAt.Unix())
}

func TestIssueCertificateNotEligible(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 4, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type: courseModels.AssessmentAssignment, Title: "Essay", Score: 30, MaxScore: 100,
	})
	require.NoError(t, err)

	_, err = svc.IssueCertificate(enrollment.ID)
	var notEligible *NotEligibleError
	require.ErrorAs(t, err, &notEligible)
	assert.Len(t, notEligible.Reasons, 2)
	assert.Contains(t, err.Error(), "Attendance")
	assert.Contains(t, err.Error(), "Assignment score")

	reloaded, err := svc.GetEnrollment(enrollment.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.CertificateIssued)
}

func TestGetProgressReport(t *testing.T) {
	svc, db := newTestService(t)
	course := seedCourse(t, db, true, 4, certsEnabled)
	enrollment, err := svc.CreateEnrollment(1, course.ID)
	require.NoError(t, err)

	for _, sessionID := range []string{"sess-1", "sess-2", "sess-3"} {
		_, err = svc.MarkAttendance(enrollment.ID, sessionID, true)
		require.NoError(t, err)
	}
	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type: courseModels.AssessmentAssignment, Title: "Essay", Score: 80, MaxScore: 100,
	})
	require.NoError(t, err)
	_, err = svc.AddAssessment(enrollment.ID, AssessmentInput{
		Type: courseModels.AssessmentQuiz, Title: "Quiz", Score: 6, MaxScore: 10,
	})
	require.NoError(t, err)

	report, err := svc.GetProgressReport(enrollment.ID)
	require.NoError(t, err)

	assert.Equal(t, enrollment.ID, report.EnrollmentID)
	assert.Equal(t, courseModels.StatusActive, report.Status)
	assert.Equal(t, course.ID, report.CourseID)
	assert.Equal(t, course.Title, report.CourseTitle)
	assert.Equal(t, 4, report.TotalSessions)
	assert.Equal(t, 3, report.AttendedSessions)
	assert.Equal(t, 2, report.TotalAssessments)
	assert.InDelta(t, 75.0, report.AttendancePercentage, 0.01)
	// Average covers all assessment types: (80 + 60) / 2
	assert.InDelta(t, 70.0, report.AverageScore, 0.01)
	require.NotNil(t, report.Eligibility)
	assert.True(t, report.Eligibility.Eligible)

	_, err = svc.GetProgressReport(999)
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}
