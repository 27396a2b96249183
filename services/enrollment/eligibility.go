package enrollment

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lms/models"
	courseModels "lms/models/course"
)

// EligibilityMetrics carries the computed percentages and the thresholds they
// were compared against, for display and audit. The score averages are
// formatted to two decimals.
type EligibilityMetrics struct {
	AttendancePercentage   float64                          `json:"attendance_percentage"`
	AverageAssignmentScore string                           `json:"average_assignment_score"`
	AverageTestScore       string                           `json:"average_test_score"`
	Required               courseModels.CertificateCriteria `json:"required"`
}

// EligibilityResult is the outcome of a certificate eligibility check.
// Reasons is always an array, possibly a singleton; Metrics is nil when the
// course does not offer certificates at all.
type EligibilityResult struct {
	Eligible bool                `json:"eligible"`
	Reasons  []string            `json:"reasons"`
	Metrics  *EligibilityMetrics `json:"metrics,omitempty"`
}

// subsetAverage is the mean of score/max_score*100 over assessments of one
// type, with the subset size so empty subsets can be told apart from zeros.
func subsetAverage(assessments []courseModels.Assessment, assessmentType string) (float64, int) {
	var sum float64
	count := 0
	for _, a := range assessments {
		if a.Type != assessmentType {
			continue
		}
		if a.MaxScore > 0 {
			sum += a.Score / a.MaxScore * 100
		}
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// CheckEligibility evaluates the enrollment against the course's certificate
// criteria. Attendance is always checked; the assignment and test score
// criteria apply only when at least one assessment of that type exists, so a
// course with nothing graded yet on an axis does not block certification on it.
func (s *Service) CheckEligibility(id uint) (*EligibilityResult, error) {
	enrollment, err := s.GetEnrollment(id)
	if err != nil {
		return nil, err
	}

	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ?", enrollment.CourseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	eligibility := course.CertificateEligibility.Data()
	if !eligibility.Enabled {
		return &EligibilityResult{
			Eligible: false,
			Reasons:  []string{"Course does not offer certificates"},
		}, nil
	}
	criteria := eligibility.Criteria

	reasons := []string{}

	attendance := enrollment.AttendancePercentage()
	if attendance < criteria.MinAttendance {
		reasons = append(reasons, fmt.Sprintf("Attendance %.2f%% is below required %g%%", attendance, criteria.MinAttendance))
	}

	assignmentAvg, assignmentCount := subsetAverage(enrollment.Assessments, courseModels.AssessmentAssignment)
	if assignmentCount > 0 && assignmentAvg < criteria.MinAssignmentScore {
		reasons = append(reasons, fmt.Sprintf("Assignment score %.2f%% is below required %g%%", assignmentAvg, criteria.MinAssignmentScore))
	}

	testAvg, testCount := subsetAverage(enrollment.Assessments, courseModels.AssessmentTest)
	if testCount > 0 && testAvg < criteria.MinTestScore {
		reasons = append(reasons, fmt.Sprintf("Test score %.2f%% is below required %g%%", testAvg, criteria.MinTestScore))
	}

	return &EligibilityResult{
		Eligible: len(reasons) == 0,
		Reasons:  reasons,
		Metrics: &EligibilityMetrics{
			AttendancePercentage:   attendance,
			AverageAssignmentScore: fmt.Sprintf("%.2f", assignmentAvg),
			AverageTestScore:       fmt.Sprintf("%.2f", testAvg),
			Required:               criteria,
		},
	}, nil
}

// IssueCertificate re-checks eligibility and records the certificate
// reference on the enrollment. Issuance is one-way: an already issued
// certificate reports ErrCertificateIssued and is never altered.
func (s *Service) IssueCertificate(id uint) (*courseModels.Enrollment, error) {
	result, err := s.CheckEligibility(id)
	if err != nil {
		return nil, err
	}
	if !result.Eligible {
		return nil, &NotEligibleError{Reasons: result.Reasons}
	}

	enrollment, err := s.GetEnrollment(id)
	if err != nil {
		return nil, err
	}
	if enrollment.CertificateIssued {
		return nil, ErrCertificateIssued
	}

	var course courseModels.Course
	if err := s.db.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
		return nil, err
	}

	// User is display-only on the certificate; absence is tolerated
	var user models.User
	s.db.Where("id = ? AND is_deleted = ?", enrollment.UserID, false).First(&user)

	enrollment.CertificateNumber = uuid.NewString()
	url, err := s.certs.Generate(enrollment, &user, &course)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	enrollment.CertificateIssued = true
	enrollment.CertificateIssuedAt = &now
	enrollment.CertificateURL = url

	if err := s.db.Save(enrollment).Error; err != nil {
		return nil, err
	}
	return enrollment, nil
}

// ProgressReport is a read-only view composing enrollment state, course
// identity, progress metrics and the full eligibility evaluation
type ProgressReport struct {
	EnrollmentID         uint               `json:"enrollment_id"`
	Status               string             `json:"status"`
	EnrolledAt           time.Time          `json:"enrolled_at"`
	CompletedAt          *time.Time         `json:"completed_at"`
	CourseID             uint               `json:"course_id"`
	CourseTitle          string             `json:"course_title"`
	Instructor           string             `json:"instructor"`
	AttendancePercentage float64            `json:"attendance_percentage"`
	AverageScore         float64            `json:"average_score"`
	TotalSessions        int                `json:"total_sessions"`
	AttendedSessions     int                `json:"attended_sessions"`
	TotalAssessments     int                `json:"total_assessments"`
	CertificateIssued    bool               `json:"certificate_issued"`
	CertificateURL       string             `json:"certificate_url,omitempty"`
	Eligibility          *EligibilityResult `json:"eligibility"`
}

// GetProgressReport aggregates the enrollment's progress; no business rule of
// its own beyond what CheckEligibility already applies.
func (s *Service) GetProgressReport(id uint) (*ProgressReport, error) {
	enrollment, err := s.GetEnrollment(id)
	if err != nil {
		return nil, err
	}

	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ?", enrollment.CourseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	eligibility, err := s.CheckEligibility(id)
	if err != nil {
		return nil, err
	}

	return &ProgressReport{
		EnrollmentID:         enrollment.ID,
		Status:               enrollment.Status,
		EnrolledAt:           enrollment.EnrolledAt,
		CompletedAt:          enrollment.CompletedAt,
		CourseID:             course.ID,
		CourseTitle:          course.Title,
		Instructor:           course.Instructor,
		AttendancePercentage: enrollment.AttendancePercentage(),
		AverageScore:         enrollment.AverageScore(),
		TotalSessions:        len(enrollment.Attendance),
		AttendedSessions:     enrollment.AttendedSessions(),
		TotalAssessments:     len(enrollment.Assessments),
		CertificateIssued:    enrollment.CertificateIssued,
		CertificateURL:       enrollment.CertificateURL,
		Eligibility:          eligibility,
	}, nil
}
