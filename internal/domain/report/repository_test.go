package report

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "postgres")), mock
}

var columns = []string{
	"id", "report_id", "title", "description", "type", "location", "latitude", "longitude",
	"image", "status", "department", "author_id", "created_at", "updated_at",
}

func TestRepositoryCreateMapsDuplicateTrackingID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reports")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "reports_report_id_key"})

	err := repo.Create(context.Background(), &Report{ID: uuid.New(), ReportID: "CS-AAAAAAAAAA"})
	if err != ErrDuplicateTrackingID {
		t.Fatalf("expected ErrDuplicateTrackingID, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRepositoryGetByReportIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reports WHERE report_id = $1")).
		WithArgs("CS-AAAAAAAAAA").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByReportID(context.Background(), "CS-AAAAAAAAAA")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestRepositoryListBuildsScopedQuery(t *testing.T) {
	repo, mock := newMockRepo(t)
	author := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(columns).
		AddRow(uuid.New().String(), "CS-AAAAAAAAAA", "Fire", "Smoke", "FIRE_OUTBREAK", nil, nil, nil, nil, "PENDING", "Fire", author.String(), now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reports WHERE author_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT $3")).
		WithArgs(author, StatusPending, 10).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), Query{AuthorID: &author, Status: StatusPending, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Type != TypeFireOutbreak || !got[0].OwnedBy(author) {
		t.Fatalf("unexpected rows %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRepositoryUpdateStatusReturnsRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE reports SET status = $2, updated_at = $3")).
		WithArgs("CS-AAAAAAAAAA", StatusResolved, now).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.New().String(), "CS-AAAAAAAAAA", "Fire", "Smoke", "FIRE_OUTBREAK", "Market", 1.5, 2.5, nil, "RESOLVED", nil, nil, now, now))

	got, err := repo.UpdateStatus(context.Background(), "CS-AAAAAAAAAA", StatusResolved, now)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != StatusResolved || !got.IsAnonymous() || got.Location.String != "Market" {
		t.Fatalf("unexpected row %+v", got)
	}
}

func TestRepositoryCountByStatusFillsZeroes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM reports GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("PENDING", 3))

	counts, err := repo.CountByStatus(context.Background(), nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[StatusPending] != 3 || counts[StatusDismissed] != 0 || len(counts) != 4 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestRepositorySetDepartment(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reports SET department = $2 WHERE report_id = $1")).
		WithArgs("CS-AAAAAAAAAA", "Fire").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetDepartment(context.Background(), "CS-AAAAAAAAAA", "Fire"); err != nil {
		t.Fatalf("set department: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
