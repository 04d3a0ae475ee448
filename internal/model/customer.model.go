package model

import "time"

// Customer is the dispatch-relevant projection of a billing customer row.
// Customers are created and maintained by the billing system; this service
// only reads them to resolve notification targets.
type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email,omitempty"`
	Address     string    `json:"address,omitempty"`
	PackageType string    `json:"package_type,omitempty"`
	ODP         string    `json:"odp,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Customer) TableName() string { return "customers" }

// CustomerFilter controls List queries. Zero value selects every customer.
type CustomerFilter struct {
	ActiveOnly bool
	IDs        []int64  // IN (...)
	ODP        *string  // equals
	ODPIn      []string // IN (...), used for notice affected_odp targeting
}
