// Package jobs holds the queued side effects of order events.
package jobs

import (
	"github.com/shashiranjanraj/marketplace/pkg/queue"
	"gorm.io/gorm"
)

// Register makes the jobs decodable by queue workers. Jobs dispatched from
// listeners carry only ids; the database handle is bound here.
func Register(db *gorm.DB) {
	queue.Register("*jobs.SendOrderMailJob", func() queue.Job {
		return &SendOrderMailJob{db: db}
	})
	queue.Register("*jobs.SendSellerMailJob", func() queue.Job {
		return &SendSellerMailJob{db: db}
	})
	queue.Register("*jobs.ArchiveReceiptJob", func() queue.Job {
		return &ArchiveReceiptJob{db: db}
	})
}
