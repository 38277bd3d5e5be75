package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile holds the doctor identity and the working-hours
// configuration the slot grid is generated from.
type DoctorProfile struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FullName        string          `gorm:"type:varchar(255);not null" json:"full_name"`
	Specialization  string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	ConsultationFee decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"consultation_fee"`

	// Working hours, "HH:MM" local time. Break window is optional.
	StartTime  string `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime    string `gorm:"type:varchar(5);not null" json:"end_time"`
	BreakStart string `gorm:"type:varchar(5)" json:"break_start,omitempty"`
	BreakEnd   string `gorm:"type:varchar(5)" json:"break_end,omitempty"`

	// Active booking range, date-granular. Nil means open-ended.
	ActiveFrom  *time.Time `gorm:"type:date" json:"active_from,omitempty"`
	ActiveUntil *time.Time `gorm:"type:date" json:"active_until,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// ActiveOn reports whether the doctor accepts bookings on the given date.
func (d *DoctorProfile) ActiveOn(date time.Time) bool {
	day := DateOf(date)
	if d.ActiveFrom != nil && day.Before(DateOf(*d.ActiveFrom)) {
		return false
	}
	if d.ActiveUntil != nil && day.After(DateOf(*d.ActiveUntil)) {
		return false
	}
	return true
}
