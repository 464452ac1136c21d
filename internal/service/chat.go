package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/intentupdate"
	"github.com/templui/goalcoach/internal/llm"
	"github.com/templui/goalcoach/internal/model"
	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/validation"
)

const (
	stateLoadingContext = "loading-context"
	stateGenerating     = "generating"
	stateStreaming      = "streaming"
	statePersisting     = "persisting"
	stateDone           = "done"
	stateFailed         = "failed"

	defaultModelTimeout = 2 * time.Minute
)

type ChatConfig struct {
	HistoryLimit int
	ActionTool   bool
	ModelTimeout time.Duration
}

type ChatService struct {
	goals    repository.GoalRepository
	messages repository.MessageRepository
	goalSvc  *GoalService
	profiles *ProfileService
	provider llm.Provider
	resolver *calendar.Resolver
	cfg      ChatConfig
}

func NewChatService(
	goals repository.GoalRepository,
	messages repository.MessageRepository,
	goalSvc *GoalService,
	profiles *ProfileService,
	provider llm.Provider,
	resolver *calendar.Resolver,
	cfg ChatConfig,
) *ChatService {
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = defaultModelTimeout
	}
	return &ChatService{
		goals:    goals,
		messages: messages,
		goalSvc:  goalSvc,
		profiles: profiles,
		provider: provider,
		resolver: resolver,
		cfg:      cfg,
	}
}

type ChatInput struct {
	GoalID   string
	Message  string
	Timezone string
}

// ChatTurn is one user message with its context loaded. The assistant reply
// is stored under MessageID once Stream finishes.
type ChatTurn struct {
	MessageID   string
	UserMessage *model.Message

	service   *ChatService
	userID    string
	goal      *model.Goal
	zone      string
	days      []*model.GoalDay
	history   []*model.Message
	dateReply string
}

// Start validates the request, persists the user message and loads the
// context for the reply. Nothing has been sent to the client yet, so every
// error here can still become a plain error response.
func (s *ChatService) Start(ctx context.Context, userID string, input ChatInput) (*ChatTurn, error) {
	goalID := strings.TrimSpace(input.GoalID)
	if goalID == "" {
		return nil, fmt.Errorf("goalId is required: %w", ErrInvalidInput)
	}
	err := validation.ValidateChatMessage(input.Message)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrInvalidInput)
	}

	turn := &ChatTurn{
		MessageID: uuid.New().String(),
		service:   s,
		userID:    userID,
	}
	turn.log(stateLoadingContext, "goal_id", goalID)

	turn.goal, err = s.goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	turn.UserMessage = &model.Message{
		ID:        uuid.New().String(),
		UserID:    userID,
		GoalID:    goalID,
		Role:      model.RoleUser,
		Content:   input.Message,
		CreatedAt: time.Now().UTC(),
	}
	err = s.messages.Create(ctx, turn.UserMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	turn.zone, err = s.profiles.Zone(ctx, userID, input.Timezone)
	if err != nil {
		return nil, err
	}

	if IsDateQuestion(input.Message) {
		turn.dateReply = "Today is " + s.resolver.HumanToday(turn.zone) + "."
		return turn, nil
	}

	turn.days, err = s.goalSvc.Window(ctx, goalID, turn.zone)
	if err != nil {
		return nil, err
	}

	turn.history, err = s.messages.History(ctx, userID, goalID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return turn, nil
}

// Stream produces the assistant reply, handing visible text to write as it
// arrives, and stores the final message. The model is consumed to the end
// even when write starts failing, so a disconnected client still gets the
// complete reply in its history.
func (t *ChatTurn) Stream(ctx context.Context, write func(string) error) (*model.Message, error) {
	s := t.service
	detached := context.WithoutCancel(ctx)
	sink := &replySink{write: write, messageID: t.MessageID}

	if t.dateReply != "" {
		_ = sink.forward(t.dateReply)
		return t.persist(detached, t.dateReply)
	}

	t.log(stateGenerating)
	modelCtx, cancel := context.WithTimeout(detached, s.cfg.ModelTimeout)
	defer cancel()

	stream, err := s.provider.Stream(modelCtx, t.request())
	if err != nil {
		t.log(stateFailed, "error", err)
		return nil, fmt.Errorf("failed to start model stream: %w", err)
	}
	defer stream.Close()

	t.log(stateStreaming)
	result, err := llm.Extract(stream, sink.forward)
	if err != nil {
		t.log(stateFailed, "error", err)
		if strings.TrimSpace(result.Text) != "" {
			_, persistErr := t.persist(detached, intentupdate.StripTags(result.Text))
			if persistErr != nil {
				slog.Error("failed to save partial reply", "error", persistErr, "message_id", t.MessageID)
			}
		}
		return nil, err
	}

	t.log(statePersisting, "tool_calls", len(result.ToolCalls))
	items := BuildProposals(s.resolver, t.zone, result.ToolCalls, s.cfg.ActionTool)
	text := intentupdate.StripTags(result.Text)
	content := ComposeReply(text, items)
	_ = sink.forward(content[len(text):])

	message, err := t.persist(detached, content)
	if err != nil {
		t.log(stateFailed, "error", err)
		return nil, err
	}

	t.log(stateDone, "proposals", len(items))
	return message, nil
}

func (t *ChatTurn) request() llm.Request {
	s := t.service
	dates := dateContext{
		Zone:      t.zone,
		Today:     s.resolver.Today(t.zone),
		Tomorrow:  s.resolver.Tomorrow(t.zone),
		Yesterday: s.resolver.Yesterday(t.zone),
		Human:     s.resolver.HumanToday(t.zone),
	}

	messages := lo.FilterMap(t.history, func(m *model.Message, _ int) (llm.Message, bool) {
		text := intentupdate.StripPayload(m.Content)
		if strings.TrimSpace(text) == "" {
			return llm.Message{}, false
		}
		role := llm.RoleUser
		if m.Role == model.RoleAssistant {
			role = llm.RoleAssistant
		}
		return llm.Message{Role: role, Content: text}, true
	})

	return llm.Request{
		System:   coachingSystemPrompt(t.goal, t.days, dates, s.cfg.ActionTool),
		Messages: messages,
		Tools:    CoachTools(s.cfg.ActionTool),
	}
}

func (t *ChatTurn) persist(ctx context.Context, content string) (*model.Message, error) {
	s := t.service

	// History is ordered by created_at, so the reply must sort after the
	// message it answers.
	createdAt := time.Now().UTC()
	if !createdAt.After(t.UserMessage.CreatedAt) {
		createdAt = t.UserMessage.CreatedAt.Add(time.Microsecond)
	}

	message := &model.Message{
		ID:        t.MessageID,
		UserID:    t.userID,
		GoalID:    t.goal.ID,
		Role:      model.RoleAssistant,
		Content:   content,
		CreatedAt: createdAt,
	}
	err := s.messages.Create(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	err = s.goals.Touch(ctx, t.userID, t.goal.ID)
	if err != nil {
		slog.Warn("failed to touch goal", "error", err, "goal_id", t.goal.ID)
	}

	return message, nil
}

func (t *ChatTurn) log(state string, args ...any) {
	attrs := []any{"state", state, "user_id", t.userID, "message_id", t.MessageID}
	if t.goal != nil {
		attrs = append(attrs, "goal_id", t.goal.ID)
	}
	slog.Debug("chat turn", append(attrs, args...)...)
}

// replySink forwards text to the client until the first write error and
// drops everything after it.
type replySink struct {
	write     func(string) error
	messageID string
	gone      bool
}

func (r *replySink) forward(text string) error {
	if r.gone || text == "" || r.write == nil {
		return nil
	}
	err := r.write(text)
	if err != nil {
		r.gone = true
		slog.Info("client went away, finishing reply in background", "error", err, "message_id", r.messageID)
	}
	return nil
}

var dateQuestions = map[string]bool{
	"what's today's date":    true,
	"what is today's date":   true,
	"what's the date today":  true,
	"what is the date today": true,
	"what's the date":        true,
	"what is the date":       true,
	"what date is it":        true,
	"what date is it today":  true,
	"what day is it":         true,
	"what day is it today":   true,
	"what's today":           true,
	"what is today":          true,
	"today's date":           true,
}

// IsDateQuestion reports whether message literally asks for today's date,
// ignoring case, spacing, curly apostrophes and trailing punctuation.
func IsDateQuestion(message string) bool {
	normalized := strings.ToLower(message)
	normalized = strings.NewReplacer("’", "'", "‘", "'").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")
	normalized = strings.TrimRight(normalized, "?.! ")
	return dateQuestions[normalized]
}
