package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorksheetLevel string

const (
	LevelElementary   WorksheetLevel = "Elementary"
	LevelIntermediate WorksheetLevel = "Intermediate"
	LevelExpert       WorksheetLevel = "Expert"
)

type Worksheet struct {
	ID             string         `json:"id" gorm:"primaryKey;size:36"`
	Title          string         `json:"title" gorm:"not null;size:200;index"`
	Topic          string         `json:"topic" gorm:"size:100;index"`
	Level          WorksheetLevel `json:"level" gorm:"size:20"`
	Description    *string        `json:"description" gorm:"type:text"`
	TotalQuestions *int           `json:"totalQuestions"` // nil falls back to the configured default

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:WorksheetID"`
}

func (w *Worksheet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

func (Worksheet) TableName() string {
	return "worksheets"
}
