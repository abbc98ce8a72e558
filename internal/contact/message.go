// Package contact accepts messages from the public contact form and lets the
// admin read and answer them.
package contact

import "github.com/aTrapDeer/portfolio-backend/internal/store"

type Message struct {
	store.Base
	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"not null"`
	Subject string `json:"subject" gorm:"not null"`
	Message string `json:"message" gorm:"type:text;not null"`
	Replied bool   `json:"replied" gorm:"not null;default:false"`
	IsRead  bool   `json:"isRead" gorm:"not null;default:false;index"`
}

func (Message) TableName() string {
	return "messages"
}

// Submission is the public contact form.
type Submission struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// ReplyRequest answers a stored message. The reply always goes to the
// address stored with the message; Subject defaults to the original one.
type ReplyRequest struct {
	ID           string `json:"id" validate:"required"`
	ReplyMessage string `json:"replyMessage" validate:"required"`
	Subject      string `json:"subject" validate:"max=200"`
}
