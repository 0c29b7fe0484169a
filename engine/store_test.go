package engine

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func TestLockKeyEncodesFullUniqueKey(t *testing.T) {
	key := FactKeyDesc{
		Table:    "financial_data",
		EntityId: "company",
		Period:   month(2024, time.September),
		IsTarget: true,
	}
	want := "fact:financial_data:company:2024-09-01:true"
	if got := key.lockKey(); got != want {
		t.Errorf("lockKey = %q, want %q", got, want)
	}

	actual := key
	actual.IsTarget = false
	if actual.lockKey() == key.lockKey() {
		t.Error("actual and target rows must lock on different keys")
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"bad conn", driver.ErrBadConn, true},
		{"wrapped bad conn", fmt.Errorf("query: %w", driver.ErrBadConn), true},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, true},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout"}, true},
		{"mysql duplicate key", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, false},
		{"invalid conn", mysql.ErrInvalidConn, true},
		{"plain error", errors.New("syntax error"), false},
		{"canceled", context.Canceled, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isTransient(c.err); got != c.want {
				t.Errorf("isTransient(%v) = %t, want %t", c.err, got, c.want)
			}
		})
	}
}

func retryStore() *Store {
	return &Store{maxAttempts: 3, retryBackoff: time.Millisecond, queryTimeout: time.Second}
}

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	s := retryStore()
	attempts := 0
	err := s.WithRetry(context.Background(), "test", func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return driver.ErrBadConn
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryExhaustionIsStoreUnavailable(t *testing.T) {
	s := retryStore()
	attempts := 0
	err := s.WithRetry(context.Background(), "test", func(ctx context.Context) error {
		attempts++
		return driver.ErrBadConn
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryNonTransientFailsFast(t *testing.T) {
	s := retryStore()
	boom := errors.New("column not found")
	attempts := 0
	err := s.WithRetry(context.Background(), "test", func(ctx context.Context) error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the original error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry)", attempts)
	}
}

func TestWithRetryMapsRecordNotFound(t *testing.T) {
	s := retryStore()
	err := s.WithRetry(context.Background(), "test", func(ctx context.Context) error {
		return fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound)
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestWithRetryStopsOnCanceledContext(t *testing.T) {
	s := retryStore()
	s.retryBackoff = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := s.WithRetry(ctx, "test", func(ctx context.Context) error {
		attempts++
		return driver.ErrBadConn
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if attempts >= 3 {
		t.Errorf("attempts = %d, want fewer than maxAttempts after cancel", attempts)
	}
}
