package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/driving_school/scheduling"
)

const (
	redeliveryGrace = 2 * time.Minute
	redeliveryBatch = 100
)

// RedeliverLessonWebhooks retries lesson_created for lessons whose webhook
// was never confirmed. Lessons younger than the grace period are left alone
// because their first delivery may still be in flight.
func RedeliverLessonWebhooks(lessons *scheduling.Manager) func() {
	return func() {
		log.Println("Running job: RedeliverLessonWebhooks...")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		delivered, err := lessons.RedeliverPending(ctx, time.Now().Add(-redeliveryGrace), redeliveryBatch)
		if err != nil {
			log.Printf("Error redelivering lesson webhooks: %v", err)
			return
		}
		if delivered > 0 {
			log.Printf("Redelivered %d lesson_created webhook(s).", delivered)
		}
	}
}
