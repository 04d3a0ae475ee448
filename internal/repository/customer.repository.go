package repository

import (
	"context"
	"errors"

	"github.com/rumahkitanet/wa-notify/internal/model"
	"github.com/rumahkitanet/wa-notify/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrCustomerNotFound is returned when a customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
)

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

func (r *CustomerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(&entity), nil
}

// List returns customers matching the filter, ordered by id. Filters compose:
// ActiveOnly, explicit IDs, a single ODP and an ODP membership list can all be
// applied in one query.
func (r *CustomerRepository) List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&CustomerEntity{})

	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if len(f.IDs) > 0 {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.ODP != nil && *f.ODP != "" {
		q = q.Where("odp = ?", *f.ODP)
	}
	if len(f.ODPIn) > 0 {
		q = q.Where("odp IN ?", f.ODPIn)
	}

	var entities []*CustomerEntity
	if err := q.Order("id").Find(&entities).Error; err != nil {
		return nil, err
	}

	return toCustomerModels(entities), nil
}
