package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Question struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	WorksheetID string `json:"worksheetId" gorm:"not null;index;size:36"`
	Text        string `json:"text" gorm:"type:text;not null"`
	Order       int    `json:"order" gorm:"column:position;not null;default:0"`

	// Options is a JSON array of strings; empty for free-response questions
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb"`
	CorrectAnswer string         `json:"correctAnswer" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the stored options. A missing or null column yields an empty list.
func (q *Question) OptionList() ([]string, error) {
	if len(q.Options) == 0 || string(q.Options) == "null" {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil, fmt.Errorf("decode options of question %s: %w", q.ID, err)
	}
	return options, nil
}

// SetOptions encodes options into the JSON column
func (q *Question) SetOptions(options []string) error {
	if len(options) == 0 {
		q.Options = datatypes.JSON("[]")
		return nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(data)
	return nil
}
