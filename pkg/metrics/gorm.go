package metrics

import (
	"time"

	"gorm.io/gorm"
)

const startedAtKey = "metrics:started_at"

// InstrumentGorm times every statement db executes into DBQueryDuration.
func InstrumentGorm(db *gorm.DB) error {
	cb := db.Callback()

	type hook struct {
		op       string
		register func(before, after func(*gorm.DB)) error
	}
	hooks := []hook{
		{"create", func(b, a func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register("metrics:before_create", b); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("metrics:after_create", a)
		}},
		{"query", func(b, a func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register("metrics:before_query", b); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("metrics:after_query", a)
		}},
		{"update", func(b, a func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register("metrics:before_update", b); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("metrics:after_update", a)
		}},
		{"delete", func(b, a func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register("metrics:before_delete", b); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("metrics:after_delete", a)
		}},
		{"row", func(b, a func(*gorm.DB)) error {
			if err := cb.Row().Before("gorm:row").Register("metrics:before_row", b); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register("metrics:after_row", a)
		}},
	}

	for _, h := range hooks {
		op := h.op
		before := func(tx *gorm.DB) { tx.InstanceSet(startedAtKey, time.Now()) }
		after := func(tx *gorm.DB) {
			if v, ok := tx.InstanceGet(startedAtKey); ok {
				if started, ok := v.(time.Time); ok {
					DBQueryDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
				}
			}
		}
		if err := h.register(before, after); err != nil {
			return err
		}
	}
	return nil
}
