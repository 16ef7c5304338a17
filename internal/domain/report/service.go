package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicsafe/civicsafe-api/internal/domain/classification"
	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
	"github.com/civicsafe/civicsafe-api/internal/pkg/validator"
)

const maxTrackingIDAttempts = 5

// Classifier suggests a department for report text. It never fails;
// problems come back as a fallback result.
type Classifier interface {
	Classify(ctx context.Context, text string) classification.Result
}

// StatusPublisher notifies tracking subscribers about status changes
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, reportID, status string, updatedAt time.Time)
}

// SubmissionNotifier is told about every accepted report
type SubmissionNotifier interface {
	ReportSubmitted(ctx context.Context, report *Report)
}

// Publishers fans one status change out to several publishers
type Publishers []StatusPublisher

// PublishStatusChange implements StatusPublisher
func (p Publishers) PublishStatusChange(ctx context.Context, reportID, status string, updatedAt time.Time) {
	for _, pub := range p {
		pub.PublishStatusChange(ctx, reportID, status, updatedAt)
	}
}

// Service handles report business logic
type Service struct {
	repo       Repository
	policy     TransitionPolicy
	classifier Classifier
	publisher  StatusPublisher
	submitted  SubmissionNotifier

	now     func() time.Time
	trackID func() (string, error)
	pending sync.WaitGroup
}

// NewService creates report service; a nil policy means Unrestricted
func NewService(repo Repository, policy TransitionPolicy) *Service {
	if policy == nil {
		policy = Unrestricted
	}
	return &Service{
		repo:    repo,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
		trackID: NewTrackingID,
	}
}

// SetClassifier enables advisory classification after submission
func (s *Service) SetClassifier(c Classifier) {
	s.classifier = c
}

// SetPublisher enables status change notifications
func (s *Service) SetPublisher(p StatusPublisher) {
	s.publisher = p
}

// SetSubmissionNotifier enables submission receipts
func (s *Service) SetSubmissionNotifier(n SubmissionNotifier) {
	s.submitted = n
}

// Wait blocks until scheduled classifications have finished
func (s *Service) Wait() {
	s.pending.Wait()
}

// SubmitReport validates and stores a new report. Anonymous callers pass a nil identity.
func (s *Service) SubmitReport(ctx context.Context, req *SubmitReportRequest, caller *user.Identity) (*Report, error) {
	if req == nil {
		return nil, &ValidationError{Fields: map[string]string{"body": "This field is required"}}
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.Image = strings.TrimSpace(req.Image)
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))

	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	now := s.now()
	report := &Report{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Type:        Type(req.Type),
		Location:    nullString(req.Location),
		Image:       nullString(req.Image),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Latitude != nil {
		report.Latitude = sql.NullFloat64{Float64: *req.Latitude, Valid: true}
	}
	if req.Longitude != nil {
		report.Longitude = sql.NullFloat64{Float64: *req.Longitude, Valid: true}
	}
	if caller != nil {
		report.AuthorID = uuid.NullUUID{UUID: caller.AccountID, Valid: true}
	}

	if err := s.create(ctx, report); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Report submitted",
		"report_id", report.ReportID,
		"type", string(report.Type),
		"anonymous", report.IsAnonymous(),
	)

	if s.submitted != nil {
		s.submitted.ReportSubmitted(ctx, report)
	}
	s.classifyAsync(ctx, report)

	return report, nil
}

// create assigns a tracking id, retrying on the rare collision
func (s *Service) create(ctx context.Context, report *Report) error {
	for attempt := 0; attempt < maxTrackingIDAttempts; attempt++ {
		id, err := s.trackID()
		if err != nil {
			return err
		}
		report.ReportID = id

		err = s.repo.Create(ctx, report)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateTrackingID) {
			return fmt.Errorf("create report: %w", err)
		}
		logger.LogWarn(ctx, "Tracking id collision, retrying", "report_id", id)
	}
	return ErrTrackingIDExhaust
}

func (s *Service) classifyAsync(ctx context.Context, report *Report) {
	if s.classifier == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	text := report.Title + "\n" + report.Description
	reportID := report.ReportID

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		result := s.classifier.Classify(bg, text)
		if result.Fallback {
			logger.LogWarn(bg, "Report classification fell back",
				"report_id", reportID,
				"department", result.Department,
				"reason", result.Reason,
			)
			return
		}
		if err := s.repo.SetDepartment(bg, reportID, result.Department); err != nil {
			logger.LogError(bg, err, "Failed to store report department", "report_id", reportID)
			return
		}
		logger.LogInfo(bg, "Report classified", "report_id", reportID, "department", result.Department)
	}()
}

// ListReports returns reports visible to caller: everything for triage staff,
// own reports for users. Anonymous callers are refused.
func (s *Service) ListReports(ctx context.Context, caller *user.Identity, filter ListFilter) ([]*Report, error) {
	q, err := s.scope(caller)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if filter.Status != "" {
		status := Status(strings.ToUpper(strings.TrimSpace(filter.Status)))
		if !status.IsValid() {
			fields["status"] = "Must be one of: PENDING, IN_PROGRESS, RESOLVED, DISMISSED"
		}
		q.Status = status
	}
	if filter.Type != "" {
		typ := Type(strings.ToUpper(strings.TrimSpace(filter.Type)))
		if !typ.IsValid() {
			fields["type"] = "Unknown report type"
		}
		q.Type = typ
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	q.Limit = filter.Limit

	reports, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if reports == nil {
		reports = []*Report{}
	}
	return reports, nil
}

// Stats counts reports per status with the same scoping as ListReports
func (s *Service) Stats(ctx context.Context, caller *user.Identity) (map[Status]int, error) {
	q, err := s.scope(caller)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx, q.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	for _, st := range Statuses() {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

func (s *Service) scope(caller *user.Identity) (Query, error) {
	if caller == nil {
		return Query{}, ErrForbidden
	}
	if user.CanViewAll(caller.Role) {
		return Query{}, nil
	}
	if caller.Role == user.RoleUser {
		id := caller.AccountID
		return Query{AuthorID: &id}, nil
	}
	return Query{}, ErrForbidden
}

// GetReportByTrackingID is the public lookup used by the tracking page
func (s *Service) GetReportByTrackingID(ctx context.Context, reportID string) (*TrackingView, error) {
	reportID = strings.ToUpper(strings.TrimSpace(reportID))
	if reportID == "" {
		return nil, ErrReportNotFound
	}

	report, err := s.repo.GetByReportID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return NewTrackingView(report), nil
}

// UpdateStatus moves a report to newStatus. Only triage staff may do this;
// setting the current status again is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, reportID, newStatus string, caller *user.Identity) (*Report, error) {
	if !user.CanTransitionStatus(user.RoleOf(caller)) {
		return nil, ErrForbidden
	}

	status := Status(strings.ToUpper(strings.TrimSpace(newStatus)))
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	reportID = strings.ToUpper(strings.TrimSpace(reportID))
	current, err := s.repo.GetByReportID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if current == nil {
		return nil, ErrReportNotFound
	}

	if current.Status == status {
		return current, nil
	}
	if !s.policy.Allows(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, current.Status, status)
	}

	updated, err := s.repo.UpdateStatus(ctx, reportID, status, s.now())
	if err != nil {
		return nil, fmt.Errorf("update report status: %w", err)
	}
	if updated == nil {
		return nil, ErrReportNotFound
	}

	logger.LogInfo(ctx, "Report status changed",
		"report_id", updated.ReportID,
		"from", string(current.Status),
		"to", string(updated.Status),
		"by", caller.AccountID.String(),
	)

	if s.publisher != nil {
		s.publisher.PublishStatusChange(ctx, updated.ReportID, string(updated.Status), updated.UpdatedAt)
	}

	return updated, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
