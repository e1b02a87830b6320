package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student is the persisted profile. Every PII column holds a server-tier
// envelope around a client-tier envelope; Email is the only cleartext field
// and Password is a bcrypt digest.
type Student struct {
	ID             uuid.UUID `json:"_id" gorm:"type:uuid;primaryKey"`
	FullName       string    `json:"fullName" gorm:"type:text;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	PhoneNumber    string    `json:"phoneNumber" gorm:"type:text;not null"`
	DateOfBirth    string    `json:"dateOfBirth" gorm:"type:text;not null"`
	Gender         string    `json:"gender" gorm:"type:text;not null"`
	Address        string    `json:"address" gorm:"type:text;not null"`
	CourseEnrolled string    `json:"courseEnrolled" gorm:"type:text;not null"`
	Password       string    `json:"-" gorm:"not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (s *Student) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// PII columns, in the order they appear on the registration form.
const (
	ColFullName       = "full_name"
	ColPhoneNumber    = "phone_number"
	ColDateOfBirth    = "date_of_birth"
	ColGender         = "gender"
	ColAddress        = "address"
	ColCourseEnrolled = "course_enrolled"
	ColEmail          = "email"
	ColPassword       = "password"
)
