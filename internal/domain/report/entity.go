package report

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Type is the report category chosen at submission; it never transitions
type Type string

const (
	TypeEmergency        Type = "EMERGENCY"
	TypeNonEmergency     Type = "NON_EMERGENCY"
	TypeTheft            Type = "THEFT"
	TypeFireOutbreak     Type = "FIRE_OUTBREAK"
	TypeMedicalEmergency Type = "MEDICAL_EMERGENCY"
	TypeNaturalDisaster  Type = "NATURAL_DISASTER"
	TypeViolence         Type = "VIOLENCE"
	TypeOther            Type = "OTHER"
)

// Types lists every recognised report type
func Types() []Type {
	return []Type{
		TypeEmergency, TypeNonEmergency, TypeTheft, TypeFireOutbreak,
		TypeMedicalEmergency, TypeNaturalDisaster, TypeViolence, TypeOther,
	}
}

// IsValid reports whether t is a recognised type
func (t Type) IsValid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Report is a single citizen-submitted incident record (matches reports table)
type Report struct {
	ID          uuid.UUID       `db:"id"`
	ReportID    string          `db:"report_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Type        Type            `db:"type"`
	Location    sql.NullString  `db:"location"`
	Latitude    sql.NullFloat64 `db:"latitude"`
	Longitude   sql.NullFloat64 `db:"longitude"`
	Image       sql.NullString  `db:"image"`
	Status      Status          `db:"status"`
	Department  sql.NullString  `db:"department"`
	AuthorID    uuid.NullUUID   `db:"author_id"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// IsAnonymous reports whether the report has no submitting account
func (r *Report) IsAnonymous() bool {
	return !r.AuthorID.Valid
}

// OwnedBy reports whether accountID submitted the report
func (r *Report) OwnedBy(accountID uuid.UUID) bool {
	return r.AuthorID.Valid && r.AuthorID.UUID == accountID
}
