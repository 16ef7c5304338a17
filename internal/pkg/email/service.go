package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	queueSize   = 100
	sendTimeout = 15 * time.Second
)

// Sender delivers a rendered message
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Service renders templates and sends them from a background queue
type Service struct {
	sender       Sender
	templates    map[string]*template.Template
	baseTemplate *template.Template
	queue        chan *queuedEmail
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

type queuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// NewService starts the send worker; call Close to drain it
func NewService(sender Sender) *Service {
	s := &Service{
		sender:       sender,
		templates:    make(map[string]*template.Template),
		baseTemplate: template.Must(template.New("base").Parse(BaseTemplate)),
		queue:        make(chan *queuedEmail, queueSize),
	}
	for name, content := range map[string]string{
		TemplateReportReceived:      ReportReceivedTemplate,
		TemplateReportStatusChanged: ReportStatusChangedTemplate,
	} {
		s.templates[name] = template.Must(template.New(name).Parse(content))
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := s.send(ctx, email); err != nil {
			log.Error().Err(err).
				Str("to", email.To).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
		cancel()
	}
}

func (s *Service) send(ctx context.Context, email *queuedEmail) error {
	html, err := s.Render(email.TemplateName, email.Data)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, &Message{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: html,
	})
}

// Render executes a named template inside the base layout
func (s *Service) Render(templateName string, data interface{}) (string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return "", err
	}

	var html bytes.Buffer
	if err := s.baseTemplate.Execute(&html, map[string]interface{}{
		"Content": template.HTML(content.String()),
	}); err != nil {
		return "", err
	}
	return html.String(), nil
}

// Queue adds an email to the async send queue; a full queue drops it
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &queuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("to", to).Msg("Email queue full, dropping email")
	}
}

// Close stops accepting mail and waits for the queue to drain
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.queue) })
	s.wg.Wait()
}
