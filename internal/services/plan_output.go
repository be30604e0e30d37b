package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionPlan splits plan steps by time horizon.
type ActionPlan struct {
	Immediate []string `json:"immediate"`
	Week1     []string `json:"week_1"`
	Week2     []string `json:"week_2"`
	LongTerm  []string `json:"long_term"`
}

// CoachingStrategy drives proactive interventions.
type CoachingStrategy struct {
	Triggers         []string `json:"triggers"`
	MessageTemplates []string `json:"message_templates"`
	Celebrations     []string `json:"celebrations"`
}

// PedagogicalOutput is the structured development plan produced by the
// completion service. Transient: it is exploded into the fan-out record
// families and never persisted as-is.
type PedagogicalOutput struct {
	Analysis    string           `json:"analysis"`
	WeeklyGoals []string         `json:"weekly_goals"`
	DailyHabits []string         `json:"daily_habits"`
	Principles  []string         `json:"principles"`
	Milestones  []string         `json:"milestones"`
	ActionPlan  ActionPlan       `json:"action_plan"`
	Coaching    CoachingStrategy `json:"coaching_strategy"`
}

// parsePlanResponse attempts the structured variant of the completion
// response: the first balanced JSON object found in the text. Anything
// else is a parse failure and the caller falls back to the deterministic
// constructor.
func parsePlanResponse(raw string) (*PedagogicalOutput, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var output PedagogicalOutput
	if err := json.Unmarshal([]byte(raw[start:end+1]), &output); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if strings.TrimSpace(output.Analysis) == "" &&
		len(output.WeeklyGoals) == 0 && len(output.DailyHabits) == 0 &&
		len(output.ActionPlan.Immediate) == 0 {
		return nil, fmt.Errorf("plan payload carries no content")
	}
	return &output, nil
}

// fallbackPlan is the deterministic constructor used when the completion
// response is malformed or timed out. Generic but fully formed, so the
// fan-out never sees an empty required collection.
func fallbackPlan(pillarType string, overall float64) *PedagogicalOutput {
	label := strings.ReplaceAll(pillarType, "_", " ")
	return &PedagogicalOutput{
		Analysis: fmt.Sprintf(
			"Your %s assessment (overall score %.1f) has been recorded. A detailed analysis was not available this time, so this plan starts from proven general guidance for %s. Small, consistent steps matter more than perfect ones.",
			label, overall, label),
		WeeklyGoals: []string{
			fmt.Sprintf("Set aside two 30-minute blocks this week to work on %s", label),
			fmt.Sprintf("Write down one concrete %s improvement you want within a month", label),
		},
		DailyHabits: []string{
			fmt.Sprintf("Spend 10 minutes a day on one small %s action", label),
			"Note one thing that went well today",
		},
		Principles: []string{
			"Consistency beats intensity",
			"Track progress to stay motivated",
		},
		Milestones: []string{
			fmt.Sprintf("One week of daily %s actions completed", label),
			fmt.Sprintf("First measurable %s improvement observed", label),
		},
		ActionPlan: ActionPlan{
			Immediate: []string{fmt.Sprintf("Pick the single easiest %s improvement and do it today", label)},
			Week1:     []string{fmt.Sprintf("Repeat your chosen %s action every day this week", label)},
			Week2:     []string{"Review what worked and adjust the routine"},
			LongTerm:  []string{fmt.Sprintf("Build a sustainable %s routine you can keep for months", label)},
		},
		Coaching: CoachingStrategy{
			Triggers:         []string{"three days without progress"},
			MessageTemplates: []string{fmt.Sprintf("A gentle nudge: your %s plan is waiting for its next small step.", label)},
			Celebrations:     []string{"first completed week"},
		},
	}
}

// normalizePlan defaults every optional collection so downstream fan-out
// logic never branches on missing data.
func normalizePlan(output *PedagogicalOutput, pillarType string, overall float64) *PedagogicalOutput {
	defaults := fallbackPlan(pillarType, overall)
	if output == nil {
		return defaults
	}
	if strings.TrimSpace(output.Analysis) == "" {
		output.Analysis = defaults.Analysis
	}
	if len(output.WeeklyGoals) == 0 {
		output.WeeklyGoals = defaults.WeeklyGoals
	}
	if len(output.DailyHabits) == 0 {
		output.DailyHabits = defaults.DailyHabits
	}
	if len(output.Principles) == 0 {
		output.Principles = defaults.Principles
	}
	if len(output.Milestones) == 0 {
		output.Milestones = defaults.Milestones
	}
	if len(output.ActionPlan.Immediate) == 0 {
		output.ActionPlan.Immediate = defaults.ActionPlan.Immediate
	}
	if len(output.ActionPlan.Week1) == 0 {
		output.ActionPlan.Week1 = defaults.ActionPlan.Week1
	}
	if len(output.ActionPlan.Week2) == 0 {
		output.ActionPlan.Week2 = defaults.ActionPlan.Week2
	}
	if len(output.ActionPlan.LongTerm) == 0 {
		output.ActionPlan.LongTerm = defaults.ActionPlan.LongTerm
	}
	if len(output.Coaching.Triggers) == 0 {
		output.Coaching.Triggers = defaults.Coaching.Triggers
	}
	if len(output.Coaching.MessageTemplates) == 0 {
		output.Coaching.MessageTemplates = defaults.Coaching.MessageTemplates
	}
	if len(output.Coaching.Celebrations) == 0 {
		output.Coaching.Celebrations = defaults.Coaching.Celebrations
	}
	return output
}
