package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/lifepillar-backend/internal/pkg/errors"
	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

type LegacyEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.LegacyEntry) (*types.LegacyEntry, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LegacyEntry, error)
	GetByUserIDAndTypes(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entryTypes []string) ([]*types.LegacyEntry, error)
}

type legacyEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLegacyEntryRepo(db *gorm.DB, baseLog *logger.Logger) LegacyEntryRepo {
	return &legacyEntryRepo{db: db, log: baseLog.With("repo", "LegacyEntryRepo")}
}

func (r *legacyEntryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.LegacyEntry) (*types.LegacyEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if entry == nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *legacyEntryRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LegacyEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LegacyEntry
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

func (r *legacyEntryRepo) GetByUserIDAndTypes(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entryTypes []string) ([]*types.LegacyEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LegacyEntry
	if userID == uuid.Nil || len(entryTypes) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND type IN ?", userID, entryTypes).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
