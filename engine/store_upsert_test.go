package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type upsertRow struct {
	ID         int `gorm:"primaryKey"`
	Month      time.Time
	IsTarget   bool
	SalesTotal *decimal.Decimal
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (upsertRow) TableName() string { return "upsert_rows" }

func mockedStore(t *testing.T) (*Store, sqlmock.Sqlmock, *[]string) {
	t.Helper()
	var captured []string
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(
		sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
			captured = append(captured, actualSQL)
			return sqlmock.QueryMatcherRegexp.Match(expectedSQL, actualSQL)
		})))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	s := &Store{
		db:           gdb,
		maxAttempts:  1,
		retryBackoff: time.Millisecond,
		lockTTL:      time.Second,
		queryTimeout: time.Second,
	}
	return s, mock, &captured
}

// An upsert whose fields match the stored row must still issue an UPDATE that
// writes every business column and refreshes updated_at, so an identical
// resubmission advances the timestamp without changing data.
func TestUpsertFactIdenticalPayloadRefreshesUpdatedAt(t *testing.T) {
	s, mock, captured := mockedStore(t)

	month := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	sales := decimal.NewFromInt(1000)
	stored := time.Date(2024, 9, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `upsert_rows`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "month", "is_target", "sales_total", "created_at", "updated_at"}).
			AddRow(7, month, false, "1000", stored, stored))
	mock.ExpectExec("UPDATE `upsert_rows` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT RELEASE_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"RELEASE_LOCK"}).AddRow(1))
	mock.ExpectCommit()

	row := &upsertRow{Month: month, IsTarget: false, SalesTotal: &sales}
	key := FactKeyDesc{
		Table:        "upsert_rows",
		EntityId:     "company",
		Period:       month,
		IsTarget:     false,
		Where:        map[string]any{"month": month, "is_target": false},
		MonthAligned: true,
	}
	previous, err := UpsertFact(context.Background(), s, key, row)
	if err != nil {
		t.Fatalf("UpsertFact: %v", err)
	}
	if previous == nil || previous.ID != 7 {
		t.Fatalf("previous = %+v", previous)
	}

	var update string
	for _, q := range *captured {
		if strings.HasPrefix(q, "UPDATE") {
			update = q
			break
		}
	}
	if update == "" {
		t.Fatalf("no UPDATE issued; captured queries: %v", *captured)
	}
	setClause := update
	if i := strings.Index(update, " WHERE "); i >= 0 {
		setClause = update[:i]
	}
	for _, col := range []string{"`month`", "`is_target`", "`sales_total`", "`updated_at`"} {
		if !strings.Contains(setClause, col+"=") {
			t.Errorf("UPDATE does not set %s: %s", col, setClause)
		}
	}
	for _, col := range []string{"`id`", "`created_at`"} {
		if strings.Contains(setClause, col+"=") {
			t.Errorf("UPDATE must not set %s: %s", col, setClause)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// First write for a key inserts rather than updates and reports no previous
// version.
func TestUpsertFactFirstWriteInserts(t *testing.T) {
	s, mock, _ := mockedStore(t)

	month := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	sales := decimal.NewFromInt(500)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `upsert_rows`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "month", "is_target", "sales_total", "created_at", "updated_at"}))
	mock.ExpectExec("INSERT INTO `upsert_rows`").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery("SELECT RELEASE_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"RELEASE_LOCK"}).AddRow(1))
	mock.ExpectCommit()

	row := &upsertRow{Month: month, IsTarget: true, SalesTotal: &sales}
	key := FactKeyDesc{
		Table:        "upsert_rows",
		EntityId:     "company",
		Period:       month,
		IsTarget:     true,
		Where:        map[string]any{"month": month, "is_target": true},
		MonthAligned: true,
	}
	previous, err := UpsertFact(context.Background(), s, key, row)
	if err != nil {
		t.Fatalf("UpsertFact: %v", err)
	}
	if previous != nil {
		t.Fatalf("expected no previous version, got %+v", previous)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
