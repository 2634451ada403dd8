package repository

import (
	"context"

	"authcore/internal/entity"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type SecurityLogRepository interface {
	Log(ctx context.Context, log *entity.SecurityLog) error
}

type securityLogRepository struct {
	db *gorm.DB
}

func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Log(ctx context.Context, log *entity.SecurityLog) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(log).Error, "write security log")
}
