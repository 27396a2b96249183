package enrollmentController

import (
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
)

// CheckCertificateEligibility evaluates an enrollment against its course's
// certificate criteria
func CheckCertificateEligibility(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(uint)

	result, err := service().CheckEligibility(enrollmentID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Eligibility evaluated successfully!", result)
}

// GetProgressReport composes the progress view of one enrollment
func GetProgressReport(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(uint)

	report, err := service().GetProgressReport(enrollmentID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress report fetched successfully!", report)
}

// AdminIssueCertificate issues the certificate for an eligible enrollment and
// notifies the student by email
func AdminIssueCertificate(c *fiber.Ctx) error {
	if user := requireAdmin(c); user == nil {
		return nil
	}

	enrollmentID := c.Locals("enrollmentID").(uint)

	enrollment, err := service().IssueCertificate(enrollmentID)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Notify the student (async, best-effort)
	var student models.User
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", enrollment.UserID, false).First(&student).Error; err == nil {
		database.Database.Db.Where("id = ?", enrollment.CourseID).First(&course)
		go utils.SendCertificateIssuedEmail(student.Email, student.FirstName, course.Title, enrollment.CertificateURL)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued successfully!", enrollment)
}
