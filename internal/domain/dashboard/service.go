package dashboard

import (
	"context"
	"fmt"

	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/domain/user"
)

// RecentLimit is how many reports a dashboard shows
const RecentLimit = 10

// ReportSource is the slice of the report service a dashboard reads
type ReportSource interface {
	ListReports(ctx context.Context, caller *user.Identity, filter report.ListFilter) ([]*report.Report, error)
	Stats(ctx context.Context, caller *user.Identity) (map[report.Status]int, error)
}

// Summary is the dashboard payload
type Summary struct {
	Role   user.Role                `json:"role"`
	Total  int                      `json:"total"`
	Stats  map[report.Status]int    `json:"stats"`
	Recent []*report.ReportResponse `json:"recent"`
}

// Service aggregates report data for a caller
type Service struct {
	reports ReportSource
}

// NewService creates dashboard service
func NewService(reports ReportSource) *Service {
	return &Service{reports: reports}
}

// Summary returns status counts and the latest reports visible to caller
func (s *Service) Summary(ctx context.Context, caller *user.Identity) (*Summary, error) {
	stats, err := s.reports.Stats(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	recent, err := s.reports.ListReports(ctx, caller, report.ListFilter{Limit: RecentLimit})
	if err != nil {
		return nil, fmt.Errorf("dashboard recent: %w", err)
	}

	total := 0
	for _, n := range stats {
		total += n
	}

	return &Summary{
		Role:   user.RoleOf(caller),
		Total:  total,
		Stats:  stats,
		Recent: report.NewReportResponses(recent),
	}, nil
}
