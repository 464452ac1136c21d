package service

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/intentupdate"
	"github.com/templui/goalcoach/internal/llm"
)

const (
	ToolUpdateIntent = "update_intent"
	ToolUpdateAction = "update_action"
)

type proposalTool struct {
	field     string
	argument  string
	dates     []string
	tool      llm.Tool
	needsFlag bool
}

var proposalTools = map[string]proposalTool{
	ToolUpdateIntent: {
		field:    intentupdate.FieldIntent,
		argument: "intent",
		dates:    []string{calendar.Today, calendar.Tomorrow},
		tool: dayTool(ToolUpdateIntent,
			"Update the intent (plan) for a specific day. Use this when the user says what they want to do today or tomorrow.",
			"intent",
			"What the user plans to do on this day. Be concise (under 200 chars). Extract the core action from what they said.",
			calendar.Today, calendar.Tomorrow),
	},
	ToolUpdateAction: {
		field:    intentupdate.FieldAction,
		argument: "action",
		dates:    []string{calendar.Today, calendar.Yesterday},
		tool: dayTool(ToolUpdateAction,
			"Record what the user actually did on a specific day. Use this when the user reports what they did today or yesterday.",
			"action",
			"What the user did on this day. Be concise (under 200 chars).",
			calendar.Today, calendar.Yesterday),
		needsFlag: true,
	},
}

func dayTool(name, description, argument, argumentDescription string, dates ...string) llm.Tool {
	return llm.Tool{
		Name:        name,
		Description: description,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"date": map[string]any{
					"type":        "string",
					"enum":        dates,
					"description": `Which day to update, either "` + strings.Join(dates, `" or "`) + `"`,
				},
				argument: map[string]any{
					"type":        "string",
					"description": argumentDescription,
				},
			},
			"required":             []string{"date", argument},
			"additionalProperties": false,
		},
	}
}

// CoachTools returns the tools offered to the model. update_action is only
// offered when actionTool is set.
func CoachTools(actionTool bool) []llm.Tool {
	tools := []llm.Tool{proposalTools[ToolUpdateIntent].tool}
	if actionTool {
		tools = append(tools, proposalTools[ToolUpdateAction].tool)
	}
	return tools
}

// BuildProposals turns completed tool calls into pending items. Calls for
// unknown or disabled tools, unparsable arguments, and dates outside the
// tool's enum are logged and skipped.
func BuildProposals(resolver *calendar.Resolver, zone string, calls []llm.ToolCall, actionTool bool) []intentupdate.Item {
	var items []intentupdate.Item

	for _, call := range calls {
		tool, ok := proposalTools[call.Name]
		if !ok || (tool.needsFlag && !actionTool) {
			slog.Warn("skipping unknown tool call", "tool", call.Name, "call_id", call.ID)
			continue
		}

		var args map[string]string
		err := json.Unmarshal([]byte(call.Arguments), &args)
		if err != nil {
			slog.Warn("skipping tool call with invalid arguments", "tool", call.Name, "call_id", call.ID, "error", err)
			continue
		}

		keyword := strings.ToLower(strings.TrimSpace(args["date"]))
		text := strings.TrimSpace(args[tool.argument])
		if text == "" || !lo.Contains(tool.dates, keyword) {
			slog.Warn("skipping tool call with unusable arguments", "tool", call.Name, "call_id", call.ID, "date", args["date"])
			continue
		}

		date, label, _ := resolver.Relative(zone, keyword)
		item := intentupdate.Item{
			ID:     uuid.New().String(),
			Date:   date,
			Label:  label,
			Intent: text,
			Status: intentupdate.StatusPending,
		}
		if tool.field != intentupdate.FieldIntent {
			item.Field = tool.field
		}
		items = append(items, item)
	}

	return items
}

// ComposeReply returns the content to store for a reply. Span tags in text
// are removed so the only payload is the one built from items. With items,
// the payload is appended and a blank reply gets a fixed confirmation
// prompt, so StripTags(text) is always a prefix of the result.
func ComposeReply(text string, items []intentupdate.Item) string {
	text = intentupdate.StripTags(text)
	if len(items) == 0 {
		return text
	}
	if strings.TrimSpace(text) == "" {
		text += confirmPrompt
	}
	return intentupdate.Encode(text, intentupdate.Payload{Type: intentupdate.PayloadType, Items: items})
}
