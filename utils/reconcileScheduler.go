package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"lms/database"
	courseModels "lms/models/course"
)

// logReconciler logs reconciler events with timestamp
func logReconciler(message string) {
	log.Printf("[ENROLLMENT-RECONCILER %s] %s", time.Now().Format(time.RFC3339), message)
}

// reconcileEnrollmentCounts recomputes each course's denormalized
// enrollment_count from live enrollment rows. Enrollment create/delete update
// the counter in a second, non-transactional write, so it can drift when that
// write fails.
func reconcileEnrollmentCounts() {
	db := database.Database.Db

	var courses []courseModels.Course
	if err := db.Where("is_deleted = ?", false).Find(&courses).Error; err != nil {
		logReconciler("Error fetching courses: " + err.Error())
		return
	}

	corrected := 0
	for _, course := range courses {
		var actual int64
		if err := db.Model(&courseModels.Enrollment{}).
			Where("course_id = ? AND is_deleted = ?", course.ID, false).
			Count(&actual).Error; err != nil {
			logReconciler(fmt.Sprintf("Error counting enrollments for course %d: %v", course.ID, err))
			continue
		}

		if actual == course.EnrollmentCount {
			continue
		}

		if err := db.Model(&courseModels.Course{}).Where("id = ?", course.ID).
			UpdateColumn("enrollment_count", actual).Error; err != nil {
			logReconciler(fmt.Sprintf("Error correcting enrollment_count for course %d: %v", course.ID, err))
			continue
		}

		logReconciler(fmt.Sprintf("Corrected course %d enrollment_count %d -> %d", course.ID, course.EnrollmentCount, actual))
		corrected++
	}

	if corrected > 0 {
		logReconciler(fmt.Sprintf("Reconciliation pass corrected %d course(s)", corrected))
	}
}

// InitializeEnrollmentReconciler schedules the hourly enrollment count
// reconciliation job
func InitializeEnrollmentReconciler() *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", reconcileEnrollmentCounts); err != nil {
		log.Printf("Failed to schedule enrollment reconciler: %v", err)
		return c
	}

	c.Start()
	logReconciler("Enrollment count reconciler started (hourly)")
	return c
}
