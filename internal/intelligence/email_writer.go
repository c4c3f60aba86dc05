package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/llm"
)

// EmailDraft is a generated email.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailWriter generates email text.
type EmailWriter interface {
	Compose(ctx context.Context, to, from, brief string) (*EmailDraft, error)
}

type emailWriter struct {
	client llm.ChatClient
}

// NewEmailWriter creates an EmailWriter backed by a chat client.
func NewEmailWriter(client llm.ChatClient) EmailWriter {
	return &emailWriter{client: client}
}

// Compose writes the body first and then derives a subject line from it.
func (w *emailWriter) Compose(ctx context.Context, to, from, brief string) (*EmailDraft, error) {
	if strings.TrimSpace(brief) == "" {
		return nil, errors.New("email context is required")
	}

	body, err := w.ask(ctx, emailBodySystemPrompt,
		fmt.Sprintf("Write a professional email to %s from %s. Context: %s", to, from, brief))
	if err != nil {
		return nil, fmt.Errorf("generating email body: %w", err)
	}

	subject, err := w.ask(ctx, emailSubjectSystemPrompt, "Email body:\n"+body)
	if err != nil {
		return nil, fmt.Errorf("generating subject line: %w", err)
	}
	subject = strings.Trim(strings.TrimPrefix(subject, "Subject:"), " \"\n")

	return &EmailDraft{Subject: subject, Body: body}, nil
}

func (w *emailWriter) ask(ctx context.Context, system, prompt string) (string, error) {
	resp, err := w.client.Chat(ctx, llm.ChatRequest{
		Task:     llm.TaskEmail,
		Messages: llm.PromptMessages(system, prompt),
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", llm.ErrInvalidOutput)
	}
	return text, nil
}
