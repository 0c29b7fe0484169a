package engine

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy. Validation errors are detected before any mutation;
// ErrStoreUnavailable is retryable and only surfaces after the adapter's
// bounded retries are exhausted.
var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidPeriod       = errors.New("invalid period")
)

type WarningKind string

const (
	// WarnDuplicateFact: the store returned more than one row for a unique
	// (entity, period, flag) key; the most recently updated row was used.
	WarnDuplicateFact WarningKind = "DuplicateFactWarning"

	// WarnDataQuality: detail rows overstate their parent total (negative
	// residual) or a similar upstream inconsistency was detected and reported
	// rather than hidden.
	WarnDataQuality WarningKind = "DataQualityIssue"
)

// Warning is a non-fatal condition recovered locally but surfaced in response
// metadata so data-quality issues stay visible.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Table    string      `json:"table,omitempty"`
	EntityId string      `json:"entity_id,omitempty"`
	Period   time.Time   `json:"period,omitempty"`
	IsTarget bool        `json:"is_target,omitempty"`
	Detail   string      `json:"detail,omitempty"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: table=%s entity=%s period=%s target=%t %s",
		w.Kind, w.Table, w.EntityId, w.Period.Format("2006-01-02"), w.IsTarget, w.Detail)
}
