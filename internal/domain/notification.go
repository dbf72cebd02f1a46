package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationConnection NotificationType = "CONNECTION"
	NotificationMessage    NotificationType = "MESSAGE"
	NotificationSystem     NotificationType = "SYSTEM"
	NotificationAnalysis   NotificationType = "ANALYSIS"
)

type Notification struct {
	ID      uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Type    NotificationType `gorm:"not null;column:type" json:"type"`
	Content string           `gorm:"not null;column:content" json:"content"`
	Link    string           `gorm:"column:link" json:"link,omitempty"`
	IsRead  bool             `gorm:"column:is_read;default:false;index" json:"is_read"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
