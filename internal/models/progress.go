package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Progress is the per (student, worksheet) aggregate. Answered and Score always match the
// answers table; Completed is recomputed whenever Answered changes.
type Progress struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	StudentID   string `json:"studentId" gorm:"not null;size:36;uniqueIndex:idx_progress_student_worksheet"`
	WorksheetID string `json:"worksheetId" gorm:"not null;size:36;index;uniqueIndex:idx_progress_student_worksheet"`

	Answered  int  `json:"answered" gorm:"not null;default:0"`
	Score     int  `json:"score" gorm:"not null;default:0"`
	Completed bool `json:"completed" gorm:"not null;default:false"`

	// Version guards the aggregate against lost updates
	Version int `json:"-" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Answers []ProgressAnswer `json:"answers,omitempty" gorm:"foreignKey:ProgressID"`
}

func (p *Progress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (Progress) TableName() string {
	return "progress"
}

// HasAnswerFor reports whether the loaded answers already contain questionID
func (p *Progress) HasAnswerFor(questionID string) bool {
	for _, a := range p.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// ProgressAnswer is one recorded response. Rows are append-only.
type ProgressAnswer struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	ProgressID     string    `json:"-" gorm:"not null;size:36;uniqueIndex:idx_progress_answer_question"`
	QuestionID     string    `json:"questionId" gorm:"not null;size:36;uniqueIndex:idx_progress_answer_question"`
	SelectedAnswer string    `json:"selectedAnswer" gorm:"type:text;not null"`
	IsCorrect      bool      `json:"isCorrect" gorm:"not null"`
	AnsweredAt     time.Time `json:"answeredAt" gorm:"not null"`
}

func (ProgressAnswer) TableName() string {
	return "progress_answers"
}
