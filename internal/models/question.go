package models

import (
	"time"
)

// Question is a top-level post. Owner never changes after creation.
type Question struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Subject    string     `gorm:"size:200;not null" json:"subject"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at"`

	// Deleting a question removes its answers and voter rows with it.
	Answers []Answer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"answers"`
	Voters  []User   `gorm:"many2many:question_voters;constraint:OnDelete:CASCADE;" json:"voters"`

	// Filled at query time for the listing page
	AnswerCount int `gorm:"-" json:"answer_count"`
}
