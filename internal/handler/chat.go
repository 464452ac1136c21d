package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/goalcoach/internal/ctxkeys"
	"github.com/templui/goalcoach/internal/service"
)

const MessageIDHeader = "X-Message-Id"

type ChatHandler struct {
	chatService    *service.ChatService
	confirmService *service.ConfirmService
}

func NewChatHandler(chatService *service.ChatService, confirmService *service.ConfirmService) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		confirmService: confirmService,
	}
}

type chatRequest struct {
	GoalID   string `json:"goalId"`
	Message  string `json:"message"`
	Timezone string `json:"timezone"`
}

type confirmRequest struct {
	GoalID    string `json:"goalId"`
	MessageID string `json:"messageId"`
	ItemID    string `json:"itemId"`
}

// Chat streams the assistant reply as chunked plain text. Failures before
// the first byte become JSON error responses; after that the connection is
// aborted so the client sees a truncated body instead of a silent success.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req chatRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	turn, err := h.chatService.Start(r.Context(), user.ID, service.ChatInput{
		GoalID:   req.GoalID,
		Message:  req.Message,
		Timezone: req.Timezone,
	})
	if err != nil {
		writeError(w, err, "user_id", user.ID, "goal_id", req.GoalID)
		return
	}

	rc := http.NewResponseController(w)
	started := false
	begin := func() {
		if started {
			return
		}
		started = true
		header := w.Header()
		header.Set("Content-Type", "text/plain; charset=utf-8")
		header.Set("Cache-Control", "no-cache")
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set(MessageIDHeader, turn.MessageID)
		w.WriteHeader(http.StatusOK)
	}

	_, err = turn.Stream(r.Context(), func(text string) error {
		begin()
		_, err := io.WriteString(w, text)
		if err != nil {
			return err
		}
		err = rc.Flush()
		if errors.Is(err, http.ErrNotSupported) {
			return nil
		}
		return err
	})
	if err != nil {
		if !started {
			writeError(w, err, "user_id", user.ID, "goal_id", req.GoalID, "message_id", turn.MessageID)
			return
		}
		slog.Error("chat stream failed", "error", err, "user_id", user.ID, "goal_id", req.GoalID, "message_id", turn.MessageID)
		panic(http.ErrAbortHandler)
	}

	begin()
}

// Confirm applies one pending update of an assistant message.
func (h *ChatHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req confirmRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	_, err = h.confirmService.Confirm(r.Context(), user.ID, req.GoalID, req.MessageID, req.ItemID)
	if err != nil {
		writeError(w, err, "user_id", user.ID, "goal_id", req.GoalID, "message_id", req.MessageID, "item_id", req.ItemID)
		return
	}

	w.WriteHeader(http.StatusOK)
}
