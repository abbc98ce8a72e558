package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/aTrapDeer/portfolio-backend/internal/mailer"
	"github.com/aTrapDeer/portfolio-backend/internal/store"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrDelivery = errors.New("email delivery failed")

type SubmitResult struct {
	Message  *Message
	Notified bool
}

type Service struct {
	messages *store.Store[Message]
	mailer   mailer.Mailer
	notifyTo string
	log      zerolog.Logger
}

// NewService stores messages in db and sends notifications for new ones to
// notifyTo.
func NewService(db *gorm.DB, m mailer.Mailer, notifyTo string, log zerolog.Logger) *Service {
	return &Service{
		messages: store.New[Message](db, store.OrderNewestFirst),
		mailer:   m,
		notifyTo: notifyTo,
		log:      log,
	}
}

// Submit stores the message and then notifies the owner. A failed
// notification is logged and reported through Notified; the message is kept.
func (s *Service) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	msg := &Message{
		Name:    sub.Name,
		Email:   sub.Email,
		Subject: sub.Subject,
		Message: sub.Message,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	result := &SubmitResult{Message: msg}
	if err := s.notify(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("message_id", msg.ID).Msg("contact notification failed")
		return result, nil
	}
	result.Notified = true
	return result, nil
}

func (s *Service) notify(ctx context.Context, msg *Message) error {
	if s.notifyTo == "" {
		return mailer.ErrNotConfigured
	}
	email, err := mailer.ContactNotification(s.notifyTo, mailer.ContactData{
		Name:    msg.Name,
		Email:   msg.Email,
		Subject: msg.Subject,
		Message: msg.Message,
	})
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, email)
}

// Reply emails the sender of a stored message and marks it replied. Nothing
// is marked when delivery fails.
func (s *Service) Reply(ctx context.Context, req ReplyRequest) (*Message, error) {
	msg, err := s.messages.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	subject := req.Subject
	if subject == "" {
		subject = msg.Subject
	}
	email, err := mailer.Reply(mailer.ReplyData{To: msg.Email, Subject: subject, Body: req.ReplyMessage})
	if err != nil {
		return nil, err
	}
	if err := s.mailer.Send(ctx, email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := s.messages.Update(ctx, msg.ID, map[string]any{"replied": true, "is_read": true}); err != nil {
		return nil, err
	}
	msg.Replied = true
	msg.IsRead = true
	return msg, nil
}

func (s *Service) List(ctx context.Context) ([]Message, error) {
	return s.messages.List(ctx)
}

func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	return s.messages.CountWhere(ctx, "is_read = ?", false)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.messages.Update(ctx, id, map[string]any{"is_read": true})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.messages.Delete(ctx, id)
}
