package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/lifepillar-backend/internal/pkg/errors"
	"github.com/yungbote/lifepillar-backend/internal/services"
)

type AssessmentHandler struct {
	writer   services.AssessmentWriter
	reader   services.AssessmentReader
	pipeline services.PlanPipeline
	migrator services.LegacyMigrator
	auditor  services.IntegrityAuditor
}

func NewAssessmentHandler(
	writer services.AssessmentWriter,
	reader services.AssessmentReader,
	pipeline services.PlanPipeline,
	migrator services.LegacyMigrator,
	auditor services.IntegrityAuditor,
) *AssessmentHandler {
	return &AssessmentHandler{
		writer:   writer,
		reader:   reader,
		pipeline: pipeline,
		migrator: migrator,
		auditor:  auditor,
	}
}

type submissionBody struct {
	PillarType     string             `json:"pillar_type" binding:"required"`
	AssessmentData map[string]any     `json:"assessment_data"`
	Scores         map[string]float64 `json:"scores"`
	Comments       string             `json:"comments"`
	IdempotencyKey string             `json:"idempotency_key"`
	ForceUpdate    bool               `json:"force_update"`
}

// Submit persists one assessment through the idempotent writer, without
// AI enrichment.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var body submissionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.writer.SaveAssessment(c.Request.Context(), services.SaveRequest{
		UserID:         userID,
		PillarType:     body.PillarType,
		Answers:        body.AssessmentData,
		Scores:         body.Scores,
		Comments:       body.Comments,
		IdempotencyKey: body.IdempotencyKey,
		ForceUpdate:    body.ForceUpdate,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pkgerrors.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"record_id":     result.RecordID,
		"was_duplicate": result.WasDuplicate,
		"warnings":      result.Warnings,
	})
}

// GeneratePlan runs the AI-enriched submission path. The pipeline owns
// its own degradation, so a failed completion still answers success.
func (h *AssessmentHandler) GeneratePlan(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var body submissionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result := h.pipeline.Process(c.Request.Context(), services.PipelineInput{
		UserID:         userID,
		PillarType:     body.PillarType,
		AssessmentData: body.AssessmentData,
		Scores:         body.Scores,
		Comments:       body.Comments,
		IdempotencyKey: body.IdempotencyKey,
		ForceUpdate:    body.ForceUpdate,
	})
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

func (h *AssessmentHandler) List(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	view, err := h.reader.GetAssessments(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": view})
}

func (h *AssessmentHandler) Health(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.auditor.PerformHealthCheck(c.Request.Context(), userID))
}

func (h *AssessmentHandler) Migrate(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	result, err := h.migrator.MigrateLegacyData(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func pathUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}
