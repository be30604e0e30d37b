package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

type RecommendationRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.RecommendationItem) ([]*types.RecommendationItem, error)
	GetPendingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RecommendationItem, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{db: db, log: baseLog.With("repo", "RecommendationRepo")}
}

func (r *recommendationRepo) CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.RecommendationItem) ([]*types.RecommendationItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(items) == 0 {
		return []*types.RecommendationItem{}, nil
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *recommendationRepo) GetPendingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RecommendationItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.RecommendationItem
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.RecommendationPending).
		Order("due_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
