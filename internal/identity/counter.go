package identity

import (
	"context"
	"errors"

	"footprint-app/internal/domain/users"

	"gorm.io/gorm"
)

var ErrCounterMissing = errors.New("serial counter row missing")

// CounterSource atomically claims the next serial.
type CounterSource interface {
	Claim(ctx context.Context) (int64, error)
}

// TableCounter claims serials from the serial_counters table with a single
// UPDATE ... RETURNING, so the row lock does the mutual exclusion. The claim
// never returns a serial at or below max(users.serial), so serials written by
// the max+1 fallback are skipped once the counter is back.
type TableCounter struct {
	db   *gorm.DB
	name string
}

func NewTableCounter(db *gorm.DB) *TableCounter {
	return &TableCounter{db: db, name: users.UserSerialCounter}
}

func claimSQL(dialect string) string {
	// two-argument MAX is sqlite's GREATEST
	greatest := "GREATEST"
	if dialect == "sqlite" {
		greatest = "MAX"
	}
	return `UPDATE serial_counters SET value = ` + greatest +
		`(value, (SELECT COALESCE(MAX(serial), 0) FROM users)) + 1 WHERE name = ? RETURNING value`
}

func (c *TableCounter) Claim(ctx context.Context) (int64, error) {
	var next int64
	res := c.db.WithContext(ctx).
		Raw(claimSQL(c.db.Dialector.Name()), c.name).
		Scan(&next)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrCounterMissing
	}
	return next, nil
}
