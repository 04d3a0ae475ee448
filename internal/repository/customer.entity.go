package repository

import (
	"time"

	"github.com/rumahkitanet/wa-notify/internal/model"
)

// CustomerEntity carries the full billing-system customer row. The dispatch
// core only needs a handful of columns, see toCustomerModel.
type CustomerEntity struct {
	ID              int64      `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	Name            string     `db:"name"             gorm:"column:name;not null"`
	Phone           string     `db:"phone"            gorm:"column:phone;not null"`
	Email           string     `db:"email"            gorm:"column:email"`
	DueDate         *time.Time `db:"due_date"         gorm:"column:due_date"`
	IsActive        bool       `db:"is_active"        gorm:"column:is_active;default:true"`
	ActivationDate  *time.Time `db:"activation_date"  gorm:"column:activation_date"`
	Address         string     `db:"address"          gorm:"column:address"`
	PackageType     string     `db:"package_type"     gorm:"column:package_type"`
	CustomPackage   string     `db:"custom_package"   gorm:"column:custom_package"`
	PPPoEUsername   string     `db:"pppoe_username"   gorm:"column:pppoe_username"`
	ODP             string     `db:"odp"              gorm:"column:odp;index"`
	InstallationFee *int64     `db:"installation_fee" gorm:"column:installation_fee"`
	Latitude        string     `db:"latitude"         gorm:"column:latitude"`
	Longitude       string     `db:"longitude"        gorm:"column:longitude"`
	CreatedAt       time.Time  `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `db:"updated_at"       gorm:"column:updated_at;autoUpdateTime"`
}

func (CustomerEntity) TableName() string {
	return "customers"
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		ID:          e.ID,
		Name:        e.Name,
		Phone:       e.Phone,
		Email:       e.Email,
		Address:     e.Address,
		PackageType: e.PackageType,
		ODP:         e.ODP,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
	}
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	if entities == nil {
		return nil
	}
	models := make([]*model.Customer, len(entities))
	for i, e := range entities {
		models[i] = toCustomerModel(e)
	}
	return models
}
