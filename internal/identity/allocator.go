// Package identity allocates serial identities and their default footprint.
package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"footprint-app/internal/apperr"
	"footprint-app/internal/domain/site"
	"footprint-app/internal/domain/users"
	"footprint-app/internal/infra/events"
	"footprint-app/internal/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Result is the outcome of Allocate. Page is zero when an existing identity
// has no primary page (an orphan left by an interrupted registration).
type Result struct {
	Serial  int64          `json:"serial"`
	Existed bool           `json:"existed"`
	User    users.User     `json:"-"`
	Page    site.Footprint `json:"-"`
}

// Option adjusts the identity created by Allocate. Options are ignored when
// the email already exists.
type Option func(*users.User)

func WithPasswordHash(hash string) Option {
	return func(u *users.User) {
		u.Password = &hash
	}
}

func WithGoogleSub(sub string) Option {
	return func(u *users.User) {
		u.GoogleSub = &sub
		u.AuthProvider = users.ProviderGoogle
	}
}

func WithProvider(provider string) Option {
	return func(u *users.User) {
		u.AuthProvider = provider
	}
}

type Allocator struct {
	db      *gorm.DB
	counter CounterSource
	floor   int64
	events  events.Publisher
	log     *zap.Logger
}

func NewAllocator(db *gorm.DB, counter CounterSource, floor int64, publisher events.Publisher, log *zap.Logger) *Allocator {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Allocator{
		db:      db,
		counter: counter,
		floor:   floor,
		events:  publisher,
		log:     logger.OrNop(log),
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Allocate returns the serial for email, creating the identity and its default
// primary footprint when the email is new.
//
// The serial comes from the counter's atomic claim. If the counter fails, it
// falls back to max(serial)+1, which can race with a concurrent fallback; the
// unique index on users.serial turns that race into a Conflict error that the
// caller sees. Conflicts are never retried here.
func (a *Allocator) Allocate(ctx context.Context, email string, opts ...Option) (*Result, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperr.Validation("Email is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.Validation("Invalid email format")
	}

	if res, err := a.lookup(ctx, email); err != nil || res != nil {
		return res, err
	}

	serial, err := a.claim(ctx)
	if err != nil {
		return nil, err
	}

	user := users.User{
		Email:        email,
		Serial:       serial,
		AuthProvider: users.ProviderLocal,
	}
	for _, opt := range opts {
		opt(&user)
	}

	var page site.Footprint
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		slug, err := site.NewFootprintSlug(tx, serial)
		if err != nil {
			return err
		}
		page = site.Footprint{
			UserID:    user.ID,
			Slug:      slug,
			IsPrimary: true,
			IsPublic:  true,
		}
		return tx.Create(&page).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent registration with the same email is not a conflict.
			if res, lerr := a.lookup(ctx, email); lerr == nil && res != nil {
				return res, nil
			}
			if a.serialTaken(ctx, serial) {
				a.log.Warn("serial allocation conflict",
					zap.Int64("serial", serial),
					zap.String("email", email),
					zap.Error(err))
				return nil, apperr.Conflict(err, "Serial %d is already taken, retry registration", serial)
			}
			a.log.Warn("default slug collision",
				zap.Int64("serial", serial),
				zap.String("email", email),
				zap.Error(err))
			return nil, apperr.Conflict(err, "Page address collided, retry registration")
		}
		return nil, apperr.FromDB(err, "Failed to create identity")
	}

	a.log.Info("identity allocated",
		zap.Int64("serial", serial),
		zap.String("user_id", user.ID),
		zap.String("slug", page.Slug))

	a.publish(ctx, events.Event{
		Type:       events.TypeIdentityAllocated,
		UserID:     user.ID,
		Email:      user.Email,
		Serial:     serial,
		Slug:       page.Slug,
		OccurredAt: time.Now(),
	})

	return &Result{Serial: serial, User: user, Page: page}, nil
}

func (a *Allocator) lookup(ctx context.Context, email string) (*Result, error) {
	var user users.User
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "Failed to look up identity")
	}

	res := &Result{Serial: user.Serial, Existed: true, User: user}
	err = a.db.WithContext(ctx).
		Where("user_id = ? AND is_primary = ?", user.ID, true).
		First(&res.Page).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.FromDB(err, "Failed to load primary page")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		a.log.Warn("identity without primary page", zap.String("user_id", user.ID), zap.Int64("serial", user.Serial))
	}
	return res, nil
}

// serialTaken reports whether a committed identity holds serial. A failed
// read counts as taken.
func (a *Allocator) serialTaken(ctx context.Context, serial int64) bool {
	var count int64
	err := a.db.WithContext(ctx).Model(&users.User{}).Where("serial = ?", serial).Count(&count).Error
	return err != nil || count > 0
}

func (a *Allocator) claim(ctx context.Context) (int64, error) {
	serial, err := a.counter.Claim(ctx)
	if err == nil {
		return serial, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, apperr.Unavailable(ctxErr, "Serial allocation cancelled")
	}

	a.log.Warn("serial counter unavailable, falling back to max(serial)+1", zap.Error(err))

	serial, ferr := a.nextFromMax(ctx)
	if ferr != nil {
		return 0, apperr.Unavailable(errors.Join(err, ferr), "Serial allocator unavailable")
	}
	return serial, nil
}

// nextFromMax is not safe under concurrent registration; see Allocate.
func (a *Allocator) nextFromMax(ctx context.Context) (int64, error) {
	var max int64
	err := a.db.WithContext(ctx).
		Model(&users.User{}).
		Select("COALESCE(MAX(serial), ?)", a.floor).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max < a.floor {
		max = a.floor
	}
	return max + 1, nil
}

func (a *Allocator) publish(ctx context.Context, e events.Event) {
	if err := a.events.Publish(ctx, e); err != nil {
		a.log.Warn("event publish failed", zap.String("type", e.Type), zap.Error(err))
	}
}
