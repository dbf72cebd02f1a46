package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SkillType string

const (
	SkillTypeLanguage  SkillType = "LANGUAGE"
	SkillTypeFramework SkillType = "FRAMEWORK"
	SkillTypeLibrary   SkillType = "LIBRARY"
	SkillTypeTool      SkillType = "TOOL"
	SkillTypeDatabase  SkillType = "DATABASE"
	SkillTypeCloud     SkillType = "CLOUD"
)

func (t SkillType) Valid() bool {
	switch t {
	case SkillTypeLanguage, SkillTypeFramework, SkillTypeLibrary,
		SkillTypeTool, SkillTypeDatabase, SkillTypeCloud:
		return true
	}
	return false
}

// AIVerifiedSkill is one inferred skill per user, produced by a profile
// analysis run. The whole set for a user is replaced atomically on every run.
type AIVerifiedSkill struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_skill;column:user_id" json:"user_id"`
	SkillName       string         `gorm:"not null;uniqueIndex:idx_user_skill;column:skill_name" json:"skill_name"`
	SkillType       SkillType      `gorm:"not null;column:skill_type" json:"skill_type"`
	ConfidenceScore int            `gorm:"not null;column:confidence_score" json:"confidence_score"`
	RepositoryCount int            `gorm:"not null;default:0;column:repository_count" json:"repository_count"`
	LinesOfCode     int            `gorm:"not null;default:0;column:lines_of_code" json:"lines_of_code"`
	SourceAnalysis  datatypes.JSON `gorm:"column:source_analysis;type:jsonb" json:"source_analysis,omitempty"`
	IsVisible       bool           `gorm:"column:is_visible;default:true" json:"is_visible"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AIVerifiedSkill) TableName() string { return "ai_verified_skill" }

func (s *AIVerifiedSkill) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SkillSource is the shape serialized into SourceAnalysis.
type SkillSource struct {
	Category        string    `json:"category"`
	DetectionMethod string    `json:"detectionMethod"`
	AnalyzedAt      time.Time `json:"analyzedAt"`
}
