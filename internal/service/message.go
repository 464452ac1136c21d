package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/templui/goalcoach/internal/intentupdate"
	"github.com/templui/goalcoach/internal/markdown"
	"github.com/templui/goalcoach/internal/model"
	"github.com/templui/goalcoach/internal/repository"
)

// MessageView is a stored message split for clients: display text, its
// rendered HTML and any embedded proposals.
type MessageView struct {
	ID        string                `json:"id"`
	Role      string                `json:"role"`
	Text      string                `json:"text"`
	HTML      string                `json:"html,omitempty"`
	Payload   *intentupdate.Payload `json:"payload,omitempty"`
	Content   string                `json:"content"`
	CreatedAt time.Time             `json:"createdAt"`
}

type MessageService struct {
	goals    repository.GoalRepository
	messages repository.MessageRepository
	markdown *markdown.Parser
}

func NewMessageService(goals repository.GoalRepository, messages repository.MessageRepository, parser *markdown.Parser) *MessageService {
	return &MessageService{
		goals:    goals,
		messages: messages,
		markdown: parser,
	}
}

// History returns every message of a goal in order, decoded for display.
func (s *MessageService) History(ctx context.Context, userID, goalID string) ([]MessageView, error) {
	_, err := s.goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.History(ctx, userID, goalID, 0)
	if err != nil {
		return nil, err
	}

	return lo.Map(messages, func(m *model.Message, _ int) MessageView {
		return s.view(m)
	}), nil
}

func (s *MessageService) view(m *model.Message) MessageView {
	text, payload := intentupdate.Decode(m.Content)
	view := MessageView{
		ID:        m.ID,
		Role:      m.Role,
		Text:      text,
		Payload:   payload,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}

	if m.Role == model.RoleAssistant && s.markdown != nil {
		html, err := s.markdown.Render(text)
		if err != nil {
			slog.Warn("failed to render message", "error", err, "message_id", m.ID)
		} else {
			view.HTML = html
		}
	}

	return view
}
