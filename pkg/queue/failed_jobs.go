package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"gorm.io/gorm"
)

// FailedJobRecord is a job that exhausted its retries. The table is created
// by the failed_jobs migration.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

var failedJobDB *gorm.DB

// UseDB persists failed jobs to db in addition to the in-memory list.
func UseDB(db *gorm.DB) { failedJobDB = db }

func (m *Manager) persistFailed(ctx context.Context, job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Type: typeName, Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	m.mu.Unlock()

	if failedJobDB == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	record := FailedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}
	if err := failedJobDB.WithContext(context.WithoutCancel(ctx)).Create(&record).Error; err != nil {
		logger.Error("queue: persist failed job", "type", typeName, "error", err)
	}
}

// Retry re-dispatches a persisted failed job and removes its record.
func Retry(ctx context.Context, id uint) error {
	if failedJobDB == nil {
		return fmt.Errorf("queue: no failed job store configured")
	}

	var rec FailedJobRecord
	if err := failedJobDB.WithContext(ctx).First(&rec, id).Error; err != nil {
		return fmt.Errorf("queue: find failed job %d: %w", id, err)
	}

	defaultManager.mu.RLock()
	factory, ok := defaultManager.registry[rec.JobType]
	defaultManager.mu.RUnlock()
	if !ok {
		return fmt.Errorf("queue: unregistered job type %q", rec.JobType)
	}

	job := factory()
	if err := json.Unmarshal([]byte(rec.Payload), job); err != nil {
		return fmt.Errorf("queue: decode failed job %d: %w", id, err)
	}
	if err := Dispatch(ctx, job); err != nil {
		return err
	}
	return failedJobDB.WithContext(ctx).Delete(&rec).Error
}

// PruneFailed deletes persisted failed jobs older than age and reports how
// many were removed.
func PruneFailed(ctx context.Context, age time.Duration) (int64, error) {
	if failedJobDB == nil {
		return 0, nil
	}
	res := failedJobDB.WithContext(ctx).
		Where("failed_at < ?", time.Now().Add(-age)).
		Delete(&FailedJobRecord{})
	return res.RowsAffected, res.Error
}
