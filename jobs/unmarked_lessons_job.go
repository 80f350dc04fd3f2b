package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/driving_school/models"
	"github.com/anjiri1684/driving_school/scheduling"
)

const (
	unmarkedGrace = time.Hour
	unmarkedBatch = 200
)

// ReportUnmarkedLessons logs lessons that finished over an hour ago and are
// still scheduled, so the office can chase the instructor for an outcome.
// It only reads: completed and no-show are staff decisions.
func ReportUnmarkedLessons(lessons *scheduling.Manager, loc *time.Location) func() {
	return func() {
		log.Println("Running job: ReportUnmarkedLessons...")

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		unmarked, err := lessons.UnmarkedLessons(ctx, time.Now().In(loc).Add(-unmarkedGrace), unmarkedBatch)
		if err != nil {
			log.Printf("Error checking for unmarked lessons: %v", err)
			return
		}

		if len(unmarked) == 0 {
			log.Println("No unmarked lessons found.")
			return
		}

		for _, l := range unmarked {
			log.Printf("⚠️ Lesson %s on %s %s-%s (instructor %s) has no outcome yet",
				l.ID, models.DateKey(l.LessonDate), models.ClockString(l.StartTime), models.ClockString(l.EndTime), l.InstructorID)
		}
		log.Printf("Found %d unmarked lesson(s).", len(unmarked))
	}
}
