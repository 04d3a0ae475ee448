package repository

import (
	"context"
	"errors"

	"github.com/rumahkitanet/wa-notify/internal/model"
	"github.com/rumahkitanet/wa-notify/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrNoticeNotFound is returned when a notice does not exist.
	ErrNoticeNotFound = errors.New("notice not found")
	// ErrNoActiveNotice is returned by LatestActive when no notice is active.
	ErrNoActiveNotice = errors.New("no active notice")
)

type NoticeRepository struct {
	*pg.DB
}

func NewNoticeRepository(db *pg.DB) *NoticeRepository {
	return &NoticeRepository{
		db,
	}
}

func (r *NoticeRepository) Get(ctx context.Context, id int64) (*model.NetworkNotice, error) {
	var entity NoticeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoticeNotFound
		}
		return nil, err
	}
	return toNoticeModel(&entity), nil
}

// List returns notices ordered by creation time descending, optionally only
// the active ones.
func (r *NoticeRepository) List(ctx context.Context, activeOnly bool) ([]*model.NetworkNotice, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&NoticeEntity{})

	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var entities []*NoticeEntity
	if err := q.Order("created_at DESC").Find(&entities).Error; err != nil {
		return nil, err
	}

	return toNoticeModels(entities), nil
}

// LatestActive returns the most recently created active notice. This is the
// default notice a dispatch request falls back to when no notice_id is given.
func (r *NoticeRepository) LatestActive(ctx context.Context) (*model.NetworkNotice, error) {
	var entity NoticeEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveNotice
		}
		return nil, err
	}
	return toNoticeModel(&entity), nil
}
