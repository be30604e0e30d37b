package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/lifepillar-backend/internal/types"
)

const planSystemPrompt = `You are a personal development coach. You turn raw self-assessment scores into a structured, pedagogically sound development plan. Respond with a single JSON object and nothing else, using exactly this schema:
{
  "analysis": "long-form analysis of the user's situation",
  "weekly_goals": ["..."],
  "daily_habits": ["..."],
  "principles": ["..."],
  "milestones": ["..."],
  "action_plan": {"immediate": ["..."], "week_1": ["..."], "week_2": ["..."], "long_term": ["..."]},
  "coaching_strategy": {"triggers": ["..."], "message_templates": ["..."], "celebrations": ["..."]}
}
Every array must contain at least one entry.`

// buildPlanUserPrompt is a deterministic template over the user's profile,
// their recent assessment history and the current submission. No
// randomness here: identical inputs produce identical prompts.
func buildPlanUserPrompt(user *types.User, history []*types.AssessmentRecord, input PipelineInput) string {
	var b strings.Builder

	b.WriteString("## User\n")
	if user != nil {
		if user.FirstName != "" {
			fmt.Fprintf(&b, "Name: %s\n", user.FirstName)
		}
		if user.Goals != "" {
			fmt.Fprintf(&b, "Stated goals: %s\n", user.Goals)
		}
		if user.Timezone != "" {
			fmt.Fprintf(&b, "Timezone: %s\n", user.Timezone)
		}
	} else {
		b.WriteString("No profile attributes available.\n")
	}

	b.WriteString("\n## Recent assessment history\n")
	if len(history) == 0 {
		b.WriteString("None. This is the user's first assessment.\n")
	}
	for _, rec := range history {
		fmt.Fprintf(&b, "- %s: overall %.1f on %s (source %s)\n",
			rec.PillarType, rec.OverallScore, rec.CreatedAt.Format("2006-01-02"), rec.Source)
	}

	fmt.Fprintf(&b, "\n## Current submission\nPillar: %s\n", input.PillarType)
	if len(input.Scores) > 0 {
		b.WriteString("Scores:\n")
		for _, key := range sortedKeys(input.Scores) {
			fmt.Fprintf(&b, "- %s: %.1f\n", key, input.Scores[key])
		}
	}
	if len(input.AssessmentData) > 0 {
		b.WriteString("Answers:\n")
		for _, key := range sortedKeys(input.AssessmentData) {
			fmt.Fprintf(&b, "- %s: %v\n", key, input.AssessmentData[key])
		}
	}
	if strings.TrimSpace(input.Comments) != "" {
		fmt.Fprintf(&b, "User comments: %s\n", input.Comments)
	}

	b.WriteString("\nProduce the development plan JSON now.")
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
