package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/pkg/email"
)

type queued struct {
	to, template, subject string
	data                  map[string]string
}

type recordingMailer struct {
	sent []queued
}

func (m *recordingMailer) Queue(to, _ string, templateName, subject string, data interface{}) {
	m.sent = append(m.sent, queued{to: to, template: templateName, subject: subject, data: data.(map[string]string)})
}

type reportsByID map[string]*report.Report

func (r reportsByID) GetByReportID(_ context.Context, id string) (*report.Report, error) {
	return r[id], nil
}

type accountsByID map[uuid.UUID]*user.Account

func (a accountsByID) GetByID(_ context.Context, id uuid.UUID) (*user.Account, error) {
	return a[id], nil
}

func TestEmailNotifierStatusChange(t *testing.T) {
	author := &user.Account{ID: uuid.New(), Email: "ana@example.com", Name: "Ana"}
	filed := &report.Report{
		ReportID: "CS-ABCDEFGH23",
		Title:    "Broken streetlight",
		AuthorID: uuid.NullUUID{UUID: author.ID, Valid: true},
	}
	anon := &report.Report{ReportID: "CS-ZZZZZZZZZZ", Title: "Anonymous tip"}

	mailer := &recordingMailer{}
	n := NewEmailNotifier(
		reportsByID{filed.ReportID: filed, anon.ReportID: anon},
		accountsByID{author.ID: author},
		mailer,
		"https://civicsafe.example/",
	)

	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	n.PublishStatusChange(context.Background(), filed.ReportID, "RESOLVED", at)
	n.PublishStatusChange(context.Background(), anon.ReportID, "RESOLVED", at)
	n.PublishStatusChange(context.Background(), "CS-UNKNOWN000", "RESOLVED", at)

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	got := mailer.sent[0]
	if got.to != author.Email || got.template != email.TemplateReportStatusChanged {
		t.Fatalf("unexpected email %+v", got)
	}
	if got.data["Status"] != "RESOLVED" || got.data["TrackingURL"] != "https://civicsafe.example/track-report?reportId=CS-ABCDEFGH23" {
		t.Fatalf("unexpected template data %+v", got.data)
	}
}

func TestEmailNotifierReceipt(t *testing.T) {
	author := &user.Account{ID: uuid.New(), Email: "ben@example.com"}
	mailer := &recordingMailer{}
	n := NewEmailNotifier(reportsByID{}, accountsByID{author.ID: author}, mailer, "")

	n.ReportSubmitted(context.Background(), &report.Report{ReportID: "CS-ANON000000"})
	n.ReportSubmitted(context.Background(), &report.Report{
		ReportID: "CS-MINE000000",
		Title:    "Pothole",
		AuthorID: uuid.NullUUID{UUID: author.ID, Valid: true},
	})

	if len(mailer.sent) != 1 || mailer.sent[0].template != email.TemplateReportReceived {
		t.Fatalf("expected one receipt, got %+v", mailer.sent)
	}
	if mailer.sent[0].data["TrackingURL"] != "" {
		t.Fatal("no tracking link without a site url")
	}
}
