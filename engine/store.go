package engine

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const storeModule = "engine.store"

// AuditHook is invoked inside the upsert transaction so the audit event and
// the mutation commit or roll back together.
type AuditHook func(ctx context.Context, tx *gorm.DB, table string, entityId string, period time.Time, isTarget bool, action string, oldObj any, newObj any) error

// Store is the fact store adapter: uniform read/write access to the
// period-keyed fact tables. Reads retry transient failures with bounded
// backoff and surface ErrStoreUnavailable once retries exhaust; upserts to the
// same unique key are linearized under a per-key lock.
type Store struct {
	db     *gorm.DB
	locker *redislock.Client
	logger *logrus.Logger
	audit  AuditHook

	maxAttempts  int
	retryBackoff time.Duration
	lockTTL      time.Duration
	queryTimeout time.Duration
}

func NewStore(db *gorm.DB, locker *redislock.Client, logger *logrus.Logger) *Store {
	return &Store{
		db:           db,
		locker:       locker,
		logger:       logger,
		maxAttempts:  3,
		retryBackoff: 200 * time.Millisecond,
		lockTTL:      30 * time.Second,
		queryTimeout: 15 * time.Second,
	}
}

// WithAudit installs the transactional audit hook.
func (s *Store) WithAudit(h AuditHook) *Store {
	s.audit = h
	return s
}

func (s *Store) DB() *gorm.DB { return s.db }

// FactQuery narrows a fact read. PeriodColumn defaults to "month"; daily
// tables pass "date". EntityColumn is empty for company-level tables.
type FactQuery struct {
	PeriodColumn string
	EntityColumn string
	EntityIn     []string
	IsTarget     *bool
}

// FetchFacts reads fact rows in [rng.From, rng.To] inclusive, ordered by
// period ascending. The whole result comes from one query so a single
// aggregation call sees one consistent snapshot; a failed read never yields a
// silently truncated result.
func FetchFacts[T any](ctx context.Context, s *Store, rng PeriodRange, q FactQuery) ([]T, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	col := q.PeriodColumn
	if col == "" {
		col = "month"
	}

	var rows []T
	err := s.WithRetry(ctx, "FetchFacts", func(ctx context.Context) error {
		var batch []T
		tx := s.db.WithContext(ctx).
			Where(col+" >= ? AND "+col+" <= ?", rng.From, rng.To)
		if q.EntityColumn != "" && len(q.EntityIn) > 0 {
			tx = tx.Where(q.EntityColumn+" IN ?", q.EntityIn)
		}
		if q.IsTarget != nil {
			tx = tx.Where("is_target = ?", *q.IsTarget)
		}
		if err := tx.Order(col + " asc").Find(&batch).Error; err != nil {
			return err
		}
		rows = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FactKeyDesc names the unique key one upsert targets. Where holds the
// concrete unique-index columns; Entity/Period/IsTarget feed locking and the
// audit trail.
type FactKeyDesc struct {
	Table        string
	EntityId     string
	Period       time.Time
	IsTarget     bool
	Where        map[string]any
	MonthAligned bool
}

func (k FactKeyDesc) lockKey() string {
	return fmt.Sprintf("fact:%s:%s:%s:%t", k.Table, k.EntityId, k.Period.Format("2006-01-02"), k.IsTarget)
}

// UpsertFact creates or replaces the row identified by key, returning the
// previous version (nil on first insert). Idempotent: identical fields leave
// the business columns unchanged but still refresh the update timestamp.
// Concurrent upserts to the same key are serialized so target-setting
// operations never interleave partial field updates.
func UpsertFact[T any](ctx context.Context, s *Store, key FactKeyDesc, row *T) (*T, error) {
	if key.MonthAligned {
		if err := ValidateMonthStart(key.Period); err != nil {
			return nil, err
		}
	} else if key.Period.IsZero() {
		return nil, fmt.Errorf("%w: zero period", ErrInvalidPeriod)
	}

	var previous *T
	err := s.withKeyLock(ctx, key.lockKey(), func(tx *gorm.DB) error {
		var existing T
		findErr := tx.Where(key.Where).First(&existing).Error
		switch {
		case findErr == nil:
			prev := existing
			previous = &prev
			// Select("*") writes zero-valued fields too; gorm refreshes the
			// autoUpdateTime column even when every business field matches.
			if err := tx.Model(&existing).Select("*").
				Omit("id", "created_at").Updates(row).Error; err != nil {
				return err
			}
			if s.audit != nil {
				return s.audit(ctx, tx, key.Table, key.EntityId, key.Period, key.IsTarget, "Update", &prev, row)
			}
			return nil
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			if s.audit != nil {
				return s.audit(ctx, tx, key.Table, key.EntityId, key.Period, key.IsTarget, "Create", nil, row)
			}
			return nil
		default:
			return findErr
		}
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// DeleteFact removes the row identified by key (administrative action; detail
// rows cascade at the store).
func DeleteFact[T any](ctx context.Context, s *Store, key FactKeyDesc) error {
	return s.withKeyLock(ctx, key.lockKey(), func(tx *gorm.DB) error {
		var existing T
		if err := tx.Where(key.Where).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where(key.Where).Delete(new(T)).Error; err != nil {
			return err
		}
		if s.audit != nil {
			return s.audit(ctx, tx, key.Table, key.EntityId, key.Period, key.IsTarget, "Delete", &existing, nil)
		}
		return nil
	})
}

// withKeyLock runs fn in a transaction while holding the per-key lock.
// Prefers the Redis locker; without one it falls back to a MySQL advisory
// lock on the same transaction connection.
func (s *Store) withKeyLock(ctx context.Context, lockKey string, fn func(tx *gorm.DB) error) error {
	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, lockKey, s.lockTTL, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
		})
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				return fmt.Errorf("%w: could not obtain lock %s", ErrStoreUnavailable, lockKey)
			}
			return err
		}
		defer func() { _ = lock.Release(ctx) }()
		return s.db.WithContext(ctx).Transaction(fn)
	}

	// GET_LOCK is connection-scoped, so it must run on the transaction that
	// performs the write.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ok int
		if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockKey).Scan(&ok).Error; err != nil {
			return err
		}
		if ok != 1 {
			return fmt.Errorf("%w: could not obtain lock %s", ErrStoreUnavailable, lockKey)
		}
		defer func() {
			var released int
			_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockKey).Scan(&released).Error
		}()
		return fn(tx)
	})
}

// WithRetry runs op with the adapter's bounded retry policy. Every attempt
// carries a timeout; transient failures back off and retry, and exhaustion
// surfaces as ErrStoreUnavailable, never as a partial result.
func (s *Store) WithRetry(ctx context.Context, funcName string, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if _, ok := ctx.Deadline(); !ok {
			attemptCtx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		}
		err := op(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"module":   storeModule,
				"funcName": funcName,
				"attempt":  attempt,
			}).Warn(err.Error())
		}
		if attempt < s.maxAttempts {
			select {
			case <-time.After(s.retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
}

// isTransient reports whether an error is worth retrying: timeouts, broken
// connections, MySQL deadlock / lock-wait-timeout.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205, 1213: // lock wait timeout, deadlock
			return true
		}
	}
	return errors.Is(err, mysql.ErrInvalidConn)
}
