package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

type ScheduledActionRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, actions []*types.ScheduledAction) ([]*types.ScheduledAction, error)
	GetUpcomingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from time.Time) ([]*types.ScheduledAction, error)
}

type scheduledActionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduledActionRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledActionRepo {
	return &scheduledActionRepo{db: db, log: baseLog.With("repo", "ScheduledActionRepo")}
}

func (r *scheduledActionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, actions []*types.ScheduledAction) ([]*types.ScheduledAction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(actions) == 0 {
		return []*types.ScheduledAction{}, nil
	}
	for _, action := range actions {
		if action.ID == uuid.Nil {
			action.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *scheduledActionRepo) GetUpcomingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from time.Time) ([]*types.ScheduledAction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ScheduledAction
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND scheduled_for >= ?", userID, from).
		Order("scheduled_for ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
