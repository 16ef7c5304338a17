package report

import (
	"time"

	"github.com/google/uuid"
)

// SubmitReportRequest is the body of POST /reports.
// Status is accepted for compatibility and ignored; new reports are always PENDING.
type SubmitReportRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=200"`
	Description string   `json:"description" validate:"required,notblank,max=5000"`
	Type        string   `json:"type" validate:"required,oneof=EMERGENCY NON_EMERGENCY THEFT FIRE_OUTBREAK MEDICAL_EMERGENCY NATURAL_DISASTER VIOLENCE OTHER"`
	Location    string   `json:"location,omitempty" validate:"max=500"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Image       string   `json:"image,omitempty" validate:"omitempty,max=2048"`
	Status      string   `json:"status,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /reports/{reportId}
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListFilter narrows ListReports; empty fields match everything
type ListFilter struct {
	Status string
	Type   string
	Limit  int
}

// Query is the store-level filter after scoping and parsing
type Query struct {
	AuthorID *uuid.UUID
	Status   Status
	Type     Type
	Limit    int
}

// TrackingView is the public projection of a report, keyed by tracking id.
// It never carries the internal id or the author.
type TrackingView struct {
	ReportID    string    `json:"report_id"`
	Type        Type      `json:"type"`
	Status      Status    `json:"status"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    *string   `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReportResponse is the report as returned to signed-in callers
type ReportResponse struct {
	ID          uuid.UUID  `json:"id"`
	ReportID    string     `json:"report_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        Type       `json:"type"`
	Location    *string    `json:"location"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Image       *string    `json:"image"`
	Status      Status     `json:"status"`
	Department  *string    `json:"department"`
	AuthorID    *uuid.UUID `json:"author_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTrackingView projects r for public lookup
func NewTrackingView(r *Report) *TrackingView {
	v := &TrackingView{
		ReportID:    r.ReportID,
		Type:        r.Type,
		Status:      r.Status,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Location.Valid {
		v.Location = &r.Location.String
	}
	return v
}

// NewReportResponse maps the entity to its API shape
func NewReportResponse(r *Report) *ReportResponse {
	resp := &ReportResponse{
		ID:          r.ID,
		ReportID:    r.ReportID,
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Location.Valid {
		resp.Location = &r.Location.String
	}
	if r.Latitude.Valid {
		resp.Latitude = &r.Latitude.Float64
	}
	if r.Longitude.Valid {
		resp.Longitude = &r.Longitude.Float64
	}
	if r.Image.Valid {
		resp.Image = &r.Image.String
	}
	if r.Department.Valid {
		resp.Department = &r.Department.String
	}
	if r.AuthorID.Valid {
		resp.AuthorID = &r.AuthorID.UUID
	}
	return resp
}

// NewReportResponses maps a list, never returning nil
func NewReportResponses(reports []*Report) []*ReportResponse {
	out := make([]*ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, NewReportResponse(r))
	}
	return out
}
