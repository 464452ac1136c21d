package service

import (
	"fmt"
	"strings"

	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/model"
)

const confirmPrompt = "Please confirm the update below."

const maxNotesLength = 200

type dateContext struct {
	Zone      string
	Today     string
	Tomorrow  string
	Yesterday string
	Human     string
}

func coachingSystemPrompt(goal *model.Goal, days []*model.GoalDay, dates dateContext, actionTool bool) string {
	var b strings.Builder

	b.WriteString("You are a supportive goal achievement coach helping a user work towards their goal.\n\n")

	b.WriteString("**User's Goal:**\n")
	fmt.Fprintf(&b, "Title: %s\n", goal.Title)
	if goal.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", goal.Description)
	}

	b.WriteString("\n**Dates (")
	b.WriteString(dates.Zone)
	b.WriteString("):**\n")
	fmt.Fprintf(&b, "- Today is %s (%s)\n", dates.Today, dates.Human)
	fmt.Fprintf(&b, "- Tomorrow is %s\n", dates.Tomorrow)
	fmt.Fprintf(&b, "- Yesterday was %s\n", dates.Yesterday)
	b.WriteString("Never work out the date yourself. Use these dates.\n")

	if len(days) > 0 {
		b.WriteString("\n**Daily Plan:**\n")
		for _, day := range days {
			fmt.Fprintf(&b, "- %s (%s): intent: %s; action: %s", day.Date, calendar.Human(day.Date), orDash(day.IntentText()), orDash(day.ActionText()))
			if day.NotesText() != "" {
				fmt.Fprintf(&b, "; notes: %s", day.NotesText())
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(`
**Your Role:**
- Be warm, supportive, and encouraging, like a good therapist friend
- Help the user plan their daily intents and track their actions
- Never be judgmental or guilt-inducing about missed days
- Ask one question at a time to avoid overwhelming
- Acknowledge progress and celebrate wins, no matter how small

**Conversation Guidelines:**
- Keep responses conversational and concise (2-4 sentences typically)
- If they mention missing a day, respond with: "That happens. What got in the way?"
- When they report progress, celebrate it: "That's great! How did it feel?"

**Updating the plan:**
- When the user says what they want to do today or tomorrow, call update_intent.
- The user confirms every update before it is saved. Do not claim it is saved.
`)
	if actionTool {
		b.WriteString("- When the user reports what they actually did today or yesterday, call update_action.\n")
	}

	b.WriteString("\nBe present, be supportive, be human.")
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

const notesSystemPrompt = "You write one short, warm reflection for a person's daily log. " +
	"Never judge, never guilt. Reply with the note text only, at most 200 characters."

func notesComparisonPrompt(goal *model.Goal, intent, action string) string {
	return fmt.Sprintf(`Goal: %s
Planned for the day: %s
What they actually did: %s

Compare the two kindly. If they did part of it, acknowledge the partial progress. If they did something different, value what they did.`, goal.Title, intent, action)
}

// notesReflectionPrompt is used when nothing was planned for the day, so it
// only talks about what was done.
func notesReflectionPrompt(goal *model.Goal, action string) string {
	return fmt.Sprintf(`Goal: %s
What they did today: %s

Write a purely positive reflection on what they did. Do not mention plans or anything they meant to do.`, goal.Title, action)
}
