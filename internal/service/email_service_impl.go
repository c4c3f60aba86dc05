package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/mail"
)

type emailService struct {
	mailer Mailer
	writer intelligence.EmailWriter
	opts   options
}

func NewEmailService(mailer Mailer, writer intelligence.EmailWriter, opts ...Option) EmailService {
	return &emailService{mailer: mailer, writer: writer, opts: buildOptions(opts)}
}

func (s *emailService) GenerateEmail(ctx context.Context, to, from, brief string) (draft *intelligence.EmailDraft, err error) {
	defer s.opts.track(ctx, "email.generate", time.Now(), &err, nil)

	if strings.TrimSpace(to) == "" || strings.TrimSpace(brief) == "" {
		return nil, fmt.Errorf("%w: recipient and context are required", ErrInvalidInput)
	}
	return s.writer.Compose(ctx, to, from, brief)
}

func (s *emailService) CreateDraft(subject, body string, to []string) (string, error) {
	link, err := s.mailer.DraftLink(subject, body, to)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return link, nil
}

func (s *emailService) RecentEmails(ctx context.Context) (emails []domain.Email, err error) {
	defer s.opts.track(ctx, "email.recent", time.Now(), &err, nil)
	return s.mailer.ListRecent(ctx)
}

func (s *emailService) BookMeeting(ctx context.Context, req mail.EventRequest) (ev domain.Event, err error) {
	defer s.opts.track(ctx, "email.book_meeting", time.Now(), &err, map[string]any{"attendees": len(req.Attendees)})
	return s.mailer.CreateEvent(ctx, req)
}
