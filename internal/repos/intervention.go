package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

type InterventionRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, messages []*types.InterventionMessage) ([]*types.InterventionMessage, error)
	GetUndeliveredByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.InterventionMessage, error)
}

type interventionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterventionRepo(db *gorm.DB, baseLog *logger.Logger) InterventionRepo {
	return &interventionRepo{db: db, log: baseLog.With("repo", "InterventionRepo")}
}

func (r *interventionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, messages []*types.InterventionMessage) ([]*types.InterventionMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(messages) == 0 {
		return []*types.InterventionMessage{}, nil
	}
	for _, msg := range messages {
		if msg.ID == uuid.Nil {
			msg.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *interventionRepo) GetUndeliveredByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.InterventionMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.InterventionMessage
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND delivered = ?", userID, false).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
