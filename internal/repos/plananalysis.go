package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/lifepillar-backend/internal/pkg/errors"
	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

type PlanAnalysisRepo interface {
	Create(ctx context.Context, tx *gorm.DB, analysis *types.PlanAnalysis) (*types.PlanAnalysis, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PlanAnalysis, error)
}

type planAnalysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) PlanAnalysisRepo {
	return &planAnalysisRepo{db: db, log: baseLog.With("repo", "PlanAnalysisRepo")}
}

func (r *planAnalysisRepo) Create(ctx context.Context, tx *gorm.DB, analysis *types.PlanAnalysis) (*types.PlanAnalysis, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if analysis == nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).Create(analysis).Error; err != nil {
		return nil, err
	}
	return analysis, nil
}

func (r *planAnalysisRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PlanAnalysis, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PlanAnalysis
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
