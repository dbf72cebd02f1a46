package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EmailFrequency string

const (
	EmailFrequencyDaily  EmailFrequency = "DAILY"
	EmailFrequencyWeekly EmailFrequency = "WEEKLY"
	EmailFrequencyNone   EmailFrequency = "NONE"
)

func (f EmailFrequency) Valid() bool {
	switch f {
	case EmailFrequencyDaily, EmailFrequencyWeekly, EmailFrequencyNone:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"not null;column:password_hash" json:"-"`
	Username     string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	FirstName    string    `gorm:"column:first_name" json:"first_name"`
	LastName     string    `gorm:"column:last_name" json:"last_name"`
	Headline     string    `gorm:"column:headline" json:"headline"`
	Bio          string    `gorm:"column:bio" json:"bio"`

	GithubUsername    string `gorm:"column:github_username" json:"github_username,omitempty"`
	GithubAccessToken string `gorm:"column:github_access_token" json:"-"`

	AvatarURL string `gorm:"column:avatar_url" json:"avatar_url"`
	AvatarPNG []byte `gorm:"column:avatar_png" json:"-"`

	EmailFrequency    EmailFrequency `gorm:"column:email_frequency;default:WEEKLY" json:"email_frequency"`
	NotificationPrefs datatypes.JSON `gorm:"column:notification_prefs;type:jsonb" json:"notification_prefs,omitempty"`

	ExperienceYears int            `gorm:"column:experience_years;default:0" json:"experience_years"`
	EducationYears  int            `gorm:"column:education_years;default:0" json:"education_years"`
	Experience      datatypes.JSON `gorm:"column:experience;type:jsonb" json:"experience,omitempty"`
	Education       datatypes.JSON `gorm:"column:education;type:jsonb" json:"education,omitempty"`
	ProfileSkills   datatypes.JSON `gorm:"column:profile_skills;type:jsonb" json:"profile_skills,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
