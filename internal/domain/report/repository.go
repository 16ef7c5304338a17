package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const sqlStateUniqueViolation = "23505"

// ErrDuplicateTrackingID is returned by Create when report_id already exists
var ErrDuplicateTrackingID = errors.New("tracking id already exists")

// Repository defines report data access interface
type Repository interface {
	Create(ctx context.Context, report *Report) error
	GetByReportID(ctx context.Context, reportID string) (*Report, error)
	List(ctx context.Context, q Query) ([]*Report, error)
	UpdateStatus(ctx context.Context, reportID string, status Status, at time.Time) (*Report, error)
	CountByStatus(ctx context.Context, authorID *uuid.UUID) (map[Status]int, error)
	SetDepartment(ctx context.Context, reportID, department string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new report repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const reportColumns = `id, report_id, title, description, type, location, latitude, longitude,
	image, status, department, author_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.ReportID,
		report.Title,
		report.Description,
		report.Type,
		report.Location,
		report.Latitude,
		report.Longitude,
		report.Image,
		report.Status,
		report.Department,
		report.AuthorID,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateUniqueViolation &&
			pqErr.Constraint == "reports_report_id_key" {
			return ErrDuplicateTrackingID
		}
		return err
	}
	return nil
}

func (r *repository) GetByReportID(ctx context.Context, reportID string) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE report_id = $1`
	var report Report
	err := r.db.GetContext(ctx, &report, query, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *repository) List(ctx context.Context, q Query) ([]*Report, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if q.AuthorID != nil {
		args = append(args, *q.AuthorID)
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Type != "" {
		args = append(args, q.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}

	stmt := `SELECT ` + reportColumns + ` FROM reports`
	if len(conditions) > 0 {
		stmt += " WHERE " + strings.Join(conditions, " AND ")
	}
	stmt += " ORDER BY created_at DESC, id DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		stmt += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var reports []*Report
	if err := r.db.SelectContext(ctx, &reports, stmt, args...); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repository) UpdateStatus(ctx context.Context, reportID string, status Status, at time.Time) (*Report, error) {
	query := `
		UPDATE reports SET status = $2, updated_at = $3
		WHERE report_id = $1
		RETURNING ` + reportColumns
	var report Report
	err := r.db.GetContext(ctx, &report, query, reportID, status, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// SetDepartment records the advisory classification; it does not bump updated_at
func (r *repository) SetDepartment(ctx context.Context, reportID, department string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE reports SET department = $2 WHERE report_id = $1`, reportID, department)
	return err
}

func (r *repository) CountByStatus(ctx context.Context, authorID *uuid.UUID) (map[Status]int, error) {
	stmt := `SELECT status, COUNT(*) AS count FROM reports`
	var args []interface{}
	if authorID != nil {
		stmt += ` WHERE author_id = $1`
		args = append(args, *authorID)
	}
	stmt += ` GROUP BY status`

	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, err
	}

	counts := make(map[Status]int, len(Statuses()))
	for _, s := range Statuses() {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
