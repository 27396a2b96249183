package enrollment

import (
	"errors"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lms/models"
	courseModels "lms/models/course"
	"lms/services/certificate"
)

// Service implements the enrollment lifecycle and certificate evaluation
// operations over the course/enrollment store.
type Service struct {
	db    *gorm.DB
	certs certificate.Generator
}

func NewService(db *gorm.DB, certs certificate.Generator) *Service {
	return &Service{db: db, certs: certs}
}

// CreateEnrollment registers userID in courseID. The course must exist and be
// published, and the user must not already hold a live enrollment in it. The
// attendance sheet is prefilled from the sessions currently on the course;
// sessions added later do not appear on existing enrollments.
func (s *Service) CreateEnrollment(userID, courseID uint) (*courseModels.Enrollment, error) {
	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, ErrCourseNotPublished
	}

	var existing courseModels.Enrollment
	err := s.db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyEnrolled
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attendance := make([]courseModels.AttendanceEntry, 0, len(course.Sessions))
	for _, session := range course.Sessions {
		attendance = append(attendance, courseModels.AttendanceEntry{SessionID: session.SessionID})
	}

	enrollment := courseModels.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     courseModels.StatusActive,
		EnrolledAt: time.Now(),
		Attendance: datatypes.NewJSONSlice(attendance),
	}

	// Two dependent writes, enrollment first, counter second. No transaction:
	// a failed counter update leaves drift that the reconciliation job corrects.
	if err := s.db.Create(&enrollment).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&courseModels.Course{}).Where("id = ?", courseID).
		UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error; err != nil {
		log.Printf("Enrollment %d created but enrollment_count update failed for course %d: %v", enrollment.ID, courseID, err)
	}

	return &enrollment, nil
}

// ListFilter narrows ListEnrollments; zero values are ignored and the
// remaining conditions compose with AND.
type ListFilter struct {
	UserID   uint
	CourseID uint
	Status   string
}

// UserInfo is the minimal user projection attached to enrollment listings
type UserInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CourseInfo is the minimal course projection attached to enrollment listings
type CourseInfo struct {
	Title      string     `json:"title"`
	Instructor string     `json:"instructor"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

// ListItem is one enrollment row with display projections of its references.
// A missing user or course leaves the projection nil rather than failing.
type ListItem struct {
	courseModels.Enrollment
	User   *UserInfo   `json:"user,omitempty"`
	Course *CourseInfo `json:"course,omitempty"`
}

// ListEnrollments returns a page of enrollments matching filter, newest
// enrolled first, along with the total match count.
func (s *Service) ListEnrollments(filter ListFilter, page, limit int) ([]ListItem, int64, error) {
	db := s.db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false)
	if filter.UserID != 0 {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.CourseID != 0 {
		db = db.Where("course_id = ?", filter.CourseID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var enrollments []courseModels.Enrollment
	if err := db.Order("enrolled_at desc").Offset(offset).Limit(limit).Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	items := make([]ListItem, len(enrollments))
	for i, e := range enrollments {
		items[i] = ListItem{Enrollment: e}

		var user models.User
		if err := s.db.Where("id = ? AND is_deleted = ?", e.UserID, false).First(&user).Error; err == nil {
			items[i].User = &UserInfo{FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}
		}

		var course courseModels.Course
		if err := s.db.Where("id = ?", e.CourseID).First(&course).Error; err == nil {
			items[i].Course = &CourseInfo{
				Title:      course.Title,
				Instructor: course.Instructor,
				StartDate:  course.StartDate,
				EndDate:    course.EndDate,
			}
		}
	}

	return items, total, nil
}

// GetEnrollment loads one live enrollment by id
func (s *Service) GetEnrollment(id uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	if err := s.db.Where("id = ? AND is_deleted = ?", id, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// UpdateStatus sets the enrollment status. Any status may follow any other;
// no transition graph is enforced. Moving to completed stamps completed_at
// once, and no other transition has side effects.
func (s *Service) UpdateStatus(id uint, status string) (*courseModels.Enrollment, error) {
	if !courseModels.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	enrollment, err := s.GetEnrollment(id)
	if err != nil {
		return nil, err
	}

	enrollment.Status = status
	if status == courseModels.StatusCompleted && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
	}

	if err := s.db.Save(enrollment).Error; err != nil {
		return nil, err
	}
	return enrollment, nil
}

// MarkAttendance flips the attendance flag for one session on the enrollment.
// Sessions added to the course after the enrollment was created have no entry
// and report ErrSessionNotFound.
func (s *Service) MarkAttendance(id uint, sessionID string, attended bool) (*courseModels.Enrollment, error) {
	enrollment, err := s.GetEnrollment(id)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, entry := range enrollment.Attendance {
		if entry.SessionID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrSessionNotFound
	}

	enrollment.Attendance[idx].Attended = attended
	if attended {
		now := time.Now()
		enrollment.Attendance[idx].AttendedAt = &now
	} else {
		enrollment.Attendance[idx].AttendedAt = nil
	}

	if err := s.db.Save(enrollment).Error; err != nil {
		return nil, err
	}
	return enrollment, nil
}

// AssessmentInput is a new graded score to append to an enrollment
type AssessmentInput struct {
	Type     string
	Title    string
	Score    float64
	MaxScore float64
}

// AddAssessment appends a graded assessment. Score bounds are the validator
// layer's job, not checked here.
func (s *Service) AddAssessment(id uint, in AssessmentInput) (*courseModels.Enrollment, error) {
	enrollment, err := s.GetEnrollment(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	enrollment.Assessments = append(enrollment.Assessments, courseModels.Assessment{
		Type:        in.Type,
		Title:       in.Title,
		Score:       in.Score,
		MaxScore:    in.MaxScore,
		SubmittedAt: now,
		GradedAt:    now,
	})

	if err := s.db.Save(enrollment).Error; err != nil {
		return nil, err
	}
	return enrollment, nil
}

// UserEnrollment is one of a user's enrollments with its full course attached
type UserEnrollment struct {
	courseModels.Enrollment
	Course *courseModels.Course `json:"course,omitempty"`
}

// UserEnrollments returns all live enrollments for a user, newest first
func (s *Service) UserEnrollments(userID uint) ([]UserEnrollment, error) {
	var enrollments []courseModels.Enrollment
	if err := s.db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("enrolled_at desc").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	items := make([]UserEnrollment, len(enrollments))
	for i, e := range enrollments {
		items[i] = UserEnrollment{Enrollment: e}
		var course courseModels.Course
		if err := s.db.Where("id = ?", e.CourseID).First(&course).Error; err == nil {
			items[i].Course = &course
		}
	}
	return items, nil
}

// DeleteEnrollment removes an enrollment. The course counter decrement is
// best-effort with no existence check on the course, then the enrollment is
// soft-deleted.
func (s *Service) DeleteEnrollment(id uint) error {
	enrollment, err := s.GetEnrollment(id)
	if err != nil {
		return err
	}

	if err := s.db.Model(&courseModels.Course{}).Where("id = ?", enrollment.CourseID).
		UpdateColumn("enrollment_count", gorm.Expr("enrollment_count - ?", 1)).Error; err != nil {
		log.Printf("Enrollment %d deleted but enrollment_count update failed for course %d: %v", enrollment.ID, enrollment.CourseID, err)
	}

	enrollment.IsDeleted = true
	return s.db.Save(enrollment).Error
}
