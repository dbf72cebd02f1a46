package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ShowcaseProvider string

const (
	ProviderCustom ShowcaseProvider = "CUSTOM"
	ProviderGitHub ShowcaseProvider = "GITHUB"
)

func (p ShowcaseProvider) Valid() bool {
	switch p {
	case ProviderCustom, ProviderGitHub:
		return true
	}
	return false
}

// ShowcasedItem is a user's published portfolio entry, either hand-entered or
// imported from GitHub. GITHUB items must carry a github.com URL.
type ShowcasedItem struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Provider    ShowcaseProvider `gorm:"not null;column:provider" json:"provider"`
	ExternalURL string           `gorm:"not null;column:external_url" json:"external_url"`
	Title       string           `gorm:"not null;column:title" json:"title"`
	Description string           `gorm:"column:description" json:"description"`
	Metadata    datatypes.JSON   `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	IsPinned    bool             `gorm:"column:is_pinned;default:false" json:"is_pinned"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ShowcasedItem) TableName() string { return "showcased_item" }

func (s *ShowcasedItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
