package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	pkgerrors "github.com/yungbote/lifepillar-backend/internal/pkg/errors"
	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

type PipelineInput struct {
	UserID         uuid.UUID          `json:"user_id"`
	PillarType     string             `json:"pillar_type"`
	AssessmentData map[string]any     `json:"assessment_data"`
	Scores         map[string]float64 `json:"scores"`
	Comments       string             `json:"comments,omitempty"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	ForceUpdate    bool               `json:"force_update,omitempty"`
}

type PipelineResult struct {
	Success  bool               `json:"success"`
	RecordID uuid.UUID          `json:"record_id,omitempty"`
	Output   *PedagogicalOutput `json:"output,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type PlanPipeline interface {
	Process(ctx context.Context, input PipelineInput) *PipelineResult
}

type planPipeline struct {
	log             *logger.Logger
	tracer          trace.Tracer
	users           repos.UserRepo
	assessments     repos.AssessmentRepo
	analyses        repos.PlanAnalysisRepo
	recommendations repos.RecommendationRepo
	actions         repos.ScheduledActionRepo
	interventions   repos.InterventionRepo
	writer          AssessmentWriter
	ai              AIClient
	historyLimit    int
	callTimeout     time.Duration
	now             func() time.Time
}

func NewPlanPipeline(
	baseLog *logger.Logger,
	users repos.UserRepo,
	assessments repos.AssessmentRepo,
	analyses repos.PlanAnalysisRepo,
	recommendations repos.RecommendationRepo,
	actions repos.ScheduledActionRepo,
	interventions repos.InterventionRepo,
	writer AssessmentWriter,
	ai AIClient,
	historyLimit int,
	callTimeout time.Duration,
) PlanPipeline {
	return &planPipeline{
		log:             baseLog.With("service", "PlanPipeline"),
		tracer:          otel.Tracer("lifepillar/plan-pipeline"),
		users:           users,
		assessments:     assessments,
		analyses:        analyses,
		recommendations: recommendations,
		actions:         actions,
		interventions:   interventions,
		writer:          writer,
		ai:              ai,
		historyLimit:    historyLimit,
		callTimeout:     callTimeout,
		now:             time.Now,
	}
}

// Process runs the full transformation: context assembly, prompt, one
// completion call, parse with deterministic fallback, normalization and
// fan-out. Only the canonical record write can fail the pipeline; a bad
// or absent AI response degrades to the fallback plan, and each fan-out
// family fails independently into Warnings.
func (s *planPipeline) Process(ctx context.Context, input PipelineInput) *PipelineResult {
	ctx, span := s.tracer.Start(ctx, "plan.process",
		trace.WithAttributes(attribute.String("pillar", input.PillarType)))
	defer span.End()

	result := &PipelineResult{}
	if input.UserID == uuid.Nil || !IsValidPillar(input.PillarType) {
		result.Error = fmt.Sprintf("invalid pipeline input: user=%s pillar=%q", input.UserID, input.PillarType)
		return result
	}

	user, history, err := s.assembleContext(ctx, input.UserID)
	if err != nil {
		result.Error = fmt.Sprintf("context assembly: %v", err)
		return result
	}

	overall := overallScore(input.Scores)
	output, warning := s.generatePlan(ctx, user, history, input, overall)
	if warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	output = normalizePlan(output, input.PillarType, overall)

	recordID, fanoutWarnings, err := s.fanOut(ctx, input, output)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.RecordID = recordID
	result.Output = output
	result.Warnings = append(result.Warnings, fanoutWarnings...)
	return result
}

// assembleContext reads profile attributes and the recent canonical
// history. The profile is a soft dependency; the canonical history read
// is not, per the store failure taxonomy.
func (s *planPipeline) assembleContext(ctx context.Context, userID uuid.UUID) (*types.User, []*types.AssessmentRecord, error) {
	ctx, span := s.tracer.Start(ctx, "plan.context_assembly")
	defer span.End()

	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrNotFound) {
			s.log.Warn("profile lookup failed, continuing without profile", "user_id", userID, "error", err)
		}
		user = nil
	}

	history, err := s.assessments.GetRecentByUserID(ctx, nil, userID, s.historyLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("canonical history read: %w", err)
	}
	return user, history, nil
}

// generatePlan makes the single completion call and parses it. Timeouts
// and malformed responses both degrade to the fallback constructor.
func (s *planPipeline) generatePlan(ctx context.Context, user *types.User, history []*types.AssessmentRecord, input PipelineInput, overall float64) (*PedagogicalOutput, string) {
	ctx, span := s.tracer.Start(ctx, "plan.completion")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	raw, err := s.ai.Complete(callCtx, planSystemPrompt, buildPlanUserPrompt(user, history, input))
	if err != nil {
		s.log.Warn("completion call failed, using fallback plan",
			"user_id", input.UserID, "pillar", input.PillarType, "error", err)
		return fallbackPlan(input.PillarType, overall), fmt.Sprintf("completion unavailable: %v", err)
	}

	output, err := parsePlanResponse(raw)
	if err != nil {
		s.log.Warn("completion response unparseable, using fallback plan",
			"user_id", input.UserID, "pillar", input.PillarType, "error", err)
		return fallbackPlan(input.PillarType, overall), fmt.Sprintf("plan response unparseable: %v", err)
	}
	return output, ""
}

// fanOut persists the canonical record (fatal on failure) and then the
// four downstream families, each independently failable. Nothing rolls
// back: partial delivery beats all-or-nothing here.
func (s *planPipeline) fanOut(ctx context.Context, input PipelineInput, output *PedagogicalOutput) (uuid.UUID, []string, error) {
	ctx, span := s.tracer.Start(ctx, "plan.fan_out")
	defer span.End()

	saveResult, err := s.writer.SaveAssessment(ctx, SaveRequest{
		UserID:         input.UserID,
		PillarType:     input.PillarType,
		Answers:        input.AssessmentData,
		Scores:         input.Scores,
		Comments:       input.Comments,
		Analysis:       output.Analysis,
		IdempotencyKey: input.IdempotencyKey,
		ForceUpdate:    input.ForceUpdate,
	})
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("canonical record write: %w", err)
	}

	warnings := append([]string{}, saveResult.Warnings...)
	recordID := saveResult.RecordID
	now := s.now().UTC()

	if _, err := s.analyses.Create(ctx, nil, &types.PlanAnalysis{
		UserID:       input.UserID,
		AssessmentID: recordID,
		PillarType:   input.PillarType,
		Analysis:     output.Analysis,
		Summary:      summarize(output.Analysis),
	}); err != nil {
		s.log.Warn("plan analysis write failed", "record_id", recordID, "error", err)
		warnings = append(warnings, fmt.Sprintf("analysis record not persisted: %v", err))
	}

	if err := s.writeRecommendations(ctx, input, recordID, output, now); err != nil {
		s.log.Warn("recommendation fan-out failed", "record_id", recordID, "error", err)
		warnings = append(warnings, fmt.Sprintf("recommendations not persisted: %v", err))
	}

	if err := s.writeScheduledActions(ctx, input, recordID, output, now); err != nil {
		s.log.Warn("scheduled action fan-out failed", "record_id", recordID, "error", err)
		warnings = append(warnings, fmt.Sprintf("scheduled actions not persisted: %v", err))
	}

	if err := s.writeInterventions(ctx, input, recordID, output); err != nil {
		s.log.Warn("intervention fan-out failed", "record_id", recordID, "error", err)
		warnings = append(warnings, fmt.Sprintf("interventions not persisted: %v", err))
	}

	return recordID, warnings, nil
}

func (s *planPipeline) writeRecommendations(ctx context.Context, input PipelineInput, recordID uuid.UUID, output *PedagogicalOutput, now time.Time) error {
	items := make([]*types.RecommendationItem, 0, len(output.WeeklyGoals)+len(output.ActionPlan.Immediate))
	for _, goal := range output.WeeklyGoals {
		items = append(items, &types.RecommendationItem{
			UserID:       input.UserID,
			AssessmentID: recordID,
			PillarType:   input.PillarType,
			Title:        goal,
			Category:     types.RecommendationWeeklyGoal,
			Priority:     types.PriorityMedium,
			Status:       types.RecommendationPending,
			DueDate:      now.AddDate(0, 0, 7),
		})
	}
	for _, action := range output.ActionPlan.Immediate {
		items = append(items, &types.RecommendationItem{
			UserID:       input.UserID,
			AssessmentID: recordID,
			PillarType:   input.PillarType,
			Title:        action,
			Category:     types.RecommendationImmediateAction,
			Priority:     types.PriorityHigh,
			Status:       types.RecommendationPending,
			DueDate:      now.AddDate(0, 0, 3),
		})
	}
	_, err := s.recommendations.CreateBatch(ctx, nil, items)
	return err
}

func (s *planPipeline) writeScheduledActions(ctx context.Context, input PipelineInput, recordID uuid.UUID, output *PedagogicalOutput, now time.Time) error {
	actions := make([]*types.ScheduledAction, 0,
		len(output.DailyHabits)+len(output.ActionPlan.Week1)+len(output.ActionPlan.Week2))
	for i, habit := range output.DailyHabits {
		actions = append(actions, &types.ScheduledAction{
			UserID:       input.UserID,
			AssessmentID: recordID,
			PillarType:   input.PillarType,
			Title:        habit,
			Cadence:      types.CadenceDaily,
			ScheduledFor: now.AddDate(0, 0, i+1),
		})
	}
	for _, step := range output.ActionPlan.Week1 {
		actions = append(actions, &types.ScheduledAction{
			UserID:       input.UserID,
			AssessmentID: recordID,
			PillarType:   input.PillarType,
			Title:        step,
			Cadence:      types.CadenceWeekly,
			ScheduledFor: now.AddDate(0, 0, 7),
		})
	}
	for _, step := range output.ActionPlan.Week2 {
		actions = append(actions, &types.ScheduledAction{
			UserID:       input.UserID,
			AssessmentID: recordID,
			PillarType:   input.PillarType,
			Title:        step,
			Cadence:      types.CadenceWeekly,
			ScheduledFor: now.AddDate(0, 0, 14),
		})
	}
	_, err := s.actions.CreateBatch(ctx, nil, actions)
	return err
}

func (s *planPipeline) writeInterventions(ctx context.Context, input PipelineInput, recordID uuid.UUID, output *PedagogicalOutput) error {
	messages := make([]*types.InterventionMessage, 0, len(output.Coaching.Triggers)+1)
	for i, trigger := range output.Coaching.Triggers {
		message := fmt.Sprintf("Checking in on your %s plan.", input.PillarType)
		if i < len(output.Coaching.MessageTemplates) {
			message = output.Coaching.MessageTemplates[i]
		}
		messages = append(messages, &types.InterventionMessage{
			UserID:       input.UserID,
			AssessmentID: recordID,
			PillarType:   input.PillarType,
			Trigger:      trigger,
			Message:      message,
			Priority:     types.PriorityMedium,
		})
	}

	firstStep := "your first action"
	if len(output.ActionPlan.Immediate) > 0 {
		firstStep = output.ActionPlan.Immediate[0]
	}
	messages = append(messages, &types.InterventionMessage{
		UserID:       input.UserID,
		AssessmentID: recordID,
		PillarType:   input.PillarType,
		Trigger:      "plan_created",
		Message:      fmt.Sprintf("Your new plan is ready. Great first step to take right now: %s", firstStep),
		Priority:     types.PriorityHigh,
	})

	_, err := s.interventions.CreateBatch(ctx, nil, messages)
	return err
}

func summarize(analysis string) string {
	const max = 160
	if len(analysis) <= max {
		return analysis
	}
	return analysis[:max] + "..."
}
