package enrollmentController

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/services/certificate"
	enrollmentService "lms/services/enrollment"
	"lms/utils"
	enrollmentValidator "lms/validators/enrollment"
)

func service() *enrollmentService.Service {
	return enrollmentService.NewService(database.Database.Db, certificate.FromConfig())
}

// respondServiceError maps service errors onto the response envelope
func respondServiceError(c *fiber.Ctx, err error) error {
	var notEligible *enrollmentService.NotEligibleError
	switch {
	case errors.Is(err, enrollmentService.ErrEnrollmentNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	case errors.Is(err, enrollmentService.ErrCourseNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	case errors.Is(err, enrollmentService.ErrSessionNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found in enrollment!", nil)
	case errors.Is(err, enrollmentService.ErrAlreadyEnrolled):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
	case errors.Is(err, enrollmentService.ErrCertificateIssued):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", nil)
	case errors.Is(err, enrollmentService.ErrCourseNotPublished):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not available for enrollment!", nil)
	case errors.Is(err, enrollmentService.ErrInvalidStatus):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment status!", nil)
	case errors.As(err, &notEligible):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, notEligible.Error(), nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}

// requireAdmin loads the requesting user and checks the ADMIN role. A nil
// user means the response has already been written.
func requireAdmin(c *fiber.Ctx) *models.User {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		return nil
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		return nil
	}

	if user.Role != "ADMIN" {
		middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
		return nil
	}
	return &user
}

// EnrollInCourse enrolls the authenticated user into a course
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	enrollment, err := service().CreateEnrollment(userID, uint(courseID))
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

// GetUserEnrollments lists the authenticated user's enrollments with courses
func GetUserEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	enrollments, err := service().UserEnrollments(userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}

// AdminListEnrollments lists enrollments with filters and pagination
func AdminListEnrollments(c *fiber.Ctx) error {
	if user := requireAdmin(c); user == nil {
		return nil
	}

	reqData, ok := c.Locals("validatedEnrollmentList").(*enrollmentValidator.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	filter := enrollmentService.ListFilter{Status: reqData.Status}
	if reqData.UserID != nil {
		filter.UserID = uint(*reqData.UserID)
	}
	if reqData.CourseID != nil {
		filter.CourseID = uint(*reqData.CourseID)
	}

	page, limit := 1, 10
	if reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData.Limit != nil {
		limit = *reqData.Limit
	}
	pq := utils.Paginate(page, limit)

	items, total, err := service().ListEnrollments(filter, pq.Page, pq.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonPageResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!",
		items, utils.BuildPaginationMeta(pq.Page, pq.Limit, total))
}

// AdminGetEnrollment fetches one enrollment with computed progress fields
func AdminGetEnrollment(c *fiber.Ctx) error {
	if user := requireAdmin(c); user == nil {
		return nil
	}

	enrollmentID := c.Locals("enrollmentID").(uint)

	enrollment, err := service().GetEnrollment(enrollmentID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched successfully!", fiber.Map{
		"enrollment":            enrollment,
		"attendance_percentage": enrollment.AttendancePercentage(),
		"average_score":         enrollment.AverageScore(),
	})
}

// AdminUpdateEnrollmentStatus sets the enrollment status
func AdminUpdateEnrollmentStatus(c *fiber.Ctx) error {
	if user := requireAdmin(c); user == nil {
		return nil
	}

	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData, ok := c.Locals("validatedStatus").(*enrollmentValidator.StatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollment, err := service().UpdateStatus(enrollmentID, reqData.Status)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status updated successfully!", enrollment)
}

// AdminMarkAttendance flips attendance for one session
func AdminMarkAttendance(c *fiber.Ctx) error {
	if user := requireAdmin(c); user == nil {
		return nil
	}

	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData, ok := c.Locals("validatedAttendance").(*enrollmentValidator.AttendanceRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollment, err := service().MarkAttendance(enrollmentID, reqData.SessionID, *reqData.Attended)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attendance marked successfully!", enrollment)
}

// AdminAddAssessment appends a graded assessment to an enrollment
func AdminAddAssessment(c *fiber.Ctx) error {
	if user := requireAdmin(c); user == nil {
		return nil
	}

	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData, ok := c.Locals("validatedAssessment").(*enrollmentValidator.AssessmentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollment, err := service().AddAssessment(enrollmentID, enrollmentService.AssessmentInput{
		Type:     reqData.Type,
		Title:    reqData.Title,
		Score:    reqData.Score,
		MaxScore: reqData.MaxScore,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment added successfully!", enrollment)
}

// AdminDeleteEnrollment removes an enrollment and releases its course seat
func AdminDeleteEnrollment(c *fiber.Ctx) error {
	if user := requireAdmin(c); user == nil {
		return nil
	}

	enrollmentID := c.Locals("enrollmentID").(uint)

	if err := service().DeleteEnrollment(enrollmentID); err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment deleted successfully!", nil)
}
