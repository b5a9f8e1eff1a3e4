package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/gestor/internal/export"
)

// TenantReader implements export.RowFetcher over the in-memory stores. Only
// the tables these stores hold produce rows; every other table is empty.
type TenantReader struct {
	orgs     *OrganizationStore
	profiles *ProfileStore
	roles    *RoleStore
	balances *HoursBalanceStore
}

// NewTenantReader creates a reader over the given stores. Any store may be nil.
func NewTenantReader(orgs *OrganizationStore, profiles *ProfileStore, roles *RoleStore, balances *HoursBalanceStore) *TenantReader {
	return &TenantReader{
		orgs:     orgs,
		profiles: profiles,
		roles:    roles,
		balances: balances,
	}
}

// FetchRows returns the rows of table whose filter column equals tenantID.
func (r *TenantReader) FetchRows(ctx context.Context, table export.Table, tenantID string) ([]export.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []export.Row

	switch table.Name {
	case "organizations":
		if r.orgs == nil {
			return nil, nil
		}
		orgs, _ := r.orgs.snapshot()
		for _, o := range orgs {
			var code any
			if o.OrgCode != nil {
				code = *o.OrgCode
			}
			all = append(all, export.Row{
				{Column: "id", Value: o.ID},
				{Column: "name", Value: o.Name},
				{Column: "org_code", Value: code},
				{Column: "created_at", Value: o.CreatedAt},
			})
		}
	case "company_info":
		if r.orgs == nil {
			return nil, nil
		}
		_, companies := r.orgs.snapshot()
		for _, c := range companies {
			all = append(all, export.Row{
				{Column: "id", Value: c.ID},
				{Column: "organization_id", Value: c.OrganizationID},
				{Column: "cnpj", Value: c.TaxID},
				{Column: "nome_fantasia", Value: c.TradeName},
				{Column: "created_at", Value: c.CreatedAt},
			})
		}
	case "profiles":
		if r.profiles == nil {
			return nil, nil
		}
		for _, p := range r.profiles.snapshot() {
			all = append(all, export.Row{
				{Column: "id", Value: p.ID},
				{Column: "user_id", Value: p.UserID},
				{Column: "full_name", Value: p.FullName},
				{Column: "email", Value: p.Email},
				{Column: "organization_id", Value: nullableUUID(p.OrganizationID)},
				{Column: "created_at", Value: p.CreatedAt},
				{Column: "updated_at", Value: p.UpdatedAt},
			})
		}
	case "user_roles":
		if r.roles == nil {
			return nil, nil
		}
		for _, ur := range r.roles.snapshot() {
			all = append(all, export.Row{
				{Column: "id", Value: ur.ID},
				{Column: "user_id", Value: ur.UserID},
				{Column: "role", Value: ur.Role},
				{Column: "organization_id", Value: nullableUUID(ur.OrganizationID)},
				{Column: "created_at", Value: ur.CreatedAt},
			})
		}
	case "hours_balance":
		if r.balances == nil {
			return nil, nil
		}
		for _, b := range r.balances.snapshot() {
			all = append(all, export.Row{
				{Column: "id", Value: b.ID},
				{Column: "user_id", Value: b.UserID},
				{Column: "organization_id", Value: b.OrganizationID},
				{Column: "balance_minutes", Value: b.BalanceMinutes},
				{Column: "updated_at", Value: b.UpdatedAt},
			})
		}
	default:
		return nil, nil
	}

	var out []export.Row
	for _, row := range all {
		v, ok := row.Get(table.FilterColumn)
		if !ok {
			continue
		}
		if id, ok := v.(uuid.UUID); ok && id.String() == tenantID {
			out = append(out, row)
		}
	}

	return out, nil
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
