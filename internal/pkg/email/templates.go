package email

// Template names
const (
	TemplateReportReceived      = "report_received"
	TemplateReportStatusChanged = "report_status_changed"
)

// BaseTemplate is the base layout for all emails
const BaseTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background: #f4f6f8; color: #1f2933; }
        .container { max-width: 600px; margin: 0 auto; padding: 32px 16px; }
        .card { background: #ffffff; border-radius: 10px; padding: 28px; border: 1px solid #e4e7eb; }
        h2 { font-size: 22px; margin: 0 0 16px; }
        p { font-size: 15px; line-height: 1.6; margin: 0 0 14px; }
        .tracking { font-family: monospace; font-size: 18px; font-weight: 600; letter-spacing: 1px; }
        .btn { display: inline-block; background: #1d4ed8; color: #ffffff !important; text-decoration: none; padding: 12px 24px; border-radius: 6px; font-weight: 600; }
        .footer { text-align: center; margin-top: 24px; color: #7b8794; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            {{.Content}}
        </div>
        <div class="footer">
            <p>You received this email because you filed a report with CivicSafe.</p>
        </div>
    </div>
</body>
</html>
`

// ReportReceivedTemplate confirms a submission and hands out the tracking id
const ReportReceivedTemplate = `
<h2>We received your report</h2>
<p>Thank you for reporting <strong>"{{.Title}}"</strong>.</p>
<p>Your tracking ID is <span class="tracking">{{.ReportID}}</span>. Keep it to follow progress.</p>
{{if .TrackingURL}}<a href="{{.TrackingURL}}" class="btn">Track your report</a>{{end}}
`

// ReportStatusChangedTemplate tells the author their report moved
const ReportStatusChangedTemplate = `
<h2>Your report was updated</h2>
<p>Report <span class="tracking">{{.ReportID}}</span> ("{{.Title}}") is now <strong>{{.Status}}</strong>.</p>
<p>Updated {{.UpdatedAt}}.</p>
{{if .TrackingURL}}<a href="{{.TrackingURL}}" class="btn">View report</a>{{end}}
`
