package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant of the platform.
type Organization struct {
	ID        uuid.UUID
	Name      string
	OrgCode   *string // five digit code, nil for legacy rows
	CreatedAt time.Time

	// Company is populated by listing queries when a company_info row exists.
	Company *CompanyInfo
}

// Code returns the organization code or an empty string.
func (o *Organization) Code() string {
	if o.OrgCode == nil {
		return ""
	}
	return *o.OrgCode
}

// CompanyInfo holds the legal details of an organization.
type CompanyInfo struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	TaxID          string // CNPJ, 14 digits
	TradeName      string // nome fantasia
	CreatedAt      time.Time
}
