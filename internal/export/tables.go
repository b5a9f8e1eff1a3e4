package export

// Table names a tenant scoped table and the column that carries the tenant id.
type Table struct {
	Name         string
	FilterColumn string
}

// TenantColumn is the foreign key every tenant scoped table carries.
const TenantColumn = "organization_id"

// DefaultTables is the export order. Changing it changes the output of every
// export, so diffs between exports only stay meaningful if it is append only.
var DefaultTables = []Table{
	{Name: "organizations", FilterColumn: "id"},
	{Name: "profiles", FilterColumn: TenantColumn},
	{Name: "user_roles", FilterColumn: TenantColumn},
	{Name: "company_info", FilterColumn: TenantColumn},
	{Name: "company_branches", FilterColumn: TenantColumn},
	{Name: "company_admins", FilterColumn: TenantColumn},
	{Name: "work_schedules", FilterColumn: TenantColumn},
	{Name: "time_records", FilterColumn: TenantColumn},
	{Name: "adjustment_requests", FilterColumn: TenantColumn},
	{Name: "vacation_requests", FilterColumn: TenantColumn},
	{Name: "documents", FilterColumn: TenantColumn},
	{Name: "holidays", FilterColumn: TenantColumn},
	{Name: "hours_balance", FilterColumn: TenantColumn},
	{Name: "payroll_settings", FilterColumn: TenantColumn},
	{Name: "location_settings", FilterColumn: TenantColumn},
	{Name: "schedule_adjustments", FilterColumn: TenantColumn},
	{Name: "status_history", FilterColumn: TenantColumn},
	{Name: "monthly_overtime_decisions", FilterColumn: TenantColumn},
}

// TableNames returns the names of tables in order.
func TableNames(tables []Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

// Field is a single column value within a row.
type Field struct {
	Column string
	Value  any
}

// Row is an ordered list of fields, in the column order reported by the store.
type Row []Field

// Columns returns the column names of the row in order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// Get returns the value for column, and whether the column exists.
func (r Row) Get(column string) (any, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// TableRows holds the rows fetched for one table.
type TableRows struct {
	Table string
	Rows  []Row
}
