package notification

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/pkg/email"
	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
)

// trackingPage is the public page where citizens look up a report
const trackingPage = "/track-report"

// Mailer queues templated email
type Mailer interface {
	Queue(to, toName, templateName, subject string, data interface{})
}

// AuthorLookup finds the account that filed a report
type AuthorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.Account, error)
}

// ReportSource loads a report with its author
type ReportSource interface {
	GetByReportID(ctx context.Context, reportID string) (*report.Report, error)
}

// EmailNotifier mails registered authors about their reports.
// Anonymous reports have nobody to notify and are skipped.
type EmailNotifier struct {
	reports  ReportSource
	accounts AuthorLookup
	mailer   Mailer
	siteURL  string
}

// NewEmailNotifier creates the notifier; siteURL builds tracking links and may be empty
func NewEmailNotifier(reports ReportSource, accounts AuthorLookup, mailer Mailer, siteURL string) *EmailNotifier {
	return &EmailNotifier{
		reports:  reports,
		accounts: accounts,
		mailer:   mailer,
		siteURL:  strings.TrimRight(siteURL, "/"),
	}
}

// ReportSubmitted sends the author a receipt with the tracking id
func (n *EmailNotifier) ReportSubmitted(ctx context.Context, r *report.Report) {
	author := n.author(ctx, r)
	if author == nil {
		return
	}
	n.mailer.Queue(author.Email, author.Name, email.TemplateReportReceived,
		"Report received: "+r.ReportID,
		map[string]string{
			"Title":       r.Title,
			"ReportID":    r.ReportID,
			"TrackingURL": n.trackingURL(r.ReportID),
		})
}

// PublishStatusChange implements report.StatusPublisher
func (n *EmailNotifier) PublishStatusChange(ctx context.Context, reportID, status string, updatedAt time.Time) {
	r, err := n.reports.GetByReportID(ctx, reportID)
	if err != nil {
		logger.LogError(ctx, err, "Failed to load report for status email", "report_id", reportID)
		return
	}
	if r == nil {
		return
	}

	author := n.author(ctx, r)
	if author == nil {
		return
	}
	n.mailer.Queue(author.Email, author.Name, email.TemplateReportStatusChanged,
		"Report "+reportID+" is now "+status,
		map[string]string{
			"Title":       r.Title,
			"ReportID":    reportID,
			"Status":      status,
			"UpdatedAt":   updatedAt.UTC().Format("2 Jan 2006 15:04 MST"),
			"TrackingURL": n.trackingURL(reportID),
		})
}

func (n *EmailNotifier) author(ctx context.Context, r *report.Report) *user.Account {
	if r.IsAnonymous() {
		return nil
	}
	account, err := n.accounts.GetByID(ctx, r.AuthorID.UUID)
	if err != nil {
		logger.LogError(ctx, err, "Failed to load report author", "report_id", r.ReportID)
		return nil
	}
	return account
}

func (n *EmailNotifier) trackingURL(reportID string) string {
	if n.siteURL == "" {
		return ""
	}
	return n.siteURL + trackingPage + "?" + url.Values{"reportId": {reportID}}.Encode()
}
