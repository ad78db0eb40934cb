package domain

// Column describes one column of a reflected table.
type Column struct {
	Name       string
	DataType   string
	Nullable   bool
	PrimaryKey bool
}

// TableSchema is the runtime description of a database table: its ordered
// columns and primary-key subset. It is loaded fresh on every request and
// never cached, so schema changes take effect immediately.
type TableSchema struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in ordinal order.
func (t TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the primary-key column names in ordinal order.
func (t TableSchema) PrimaryKey() []string {
	var pks []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c.Name)
		}
	}
	return pks
}

// HasColumn reports whether the table has a column with the given name.
func (t TableSchema) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// TableUIRule restricts what the generic table UI may do with a table,
// independently of granted permission rows. Mutations on a restricted table
// are refused server-side, not just hidden.
type TableUIRule struct {
	DisableCreate bool
	DisableUpdate bool
	DisableDelete bool
	DisableEditUI bool
}

// TableUIRules holds the per-table restrictions. Log-style tables are
// append-only from the game server and must stay untouched from the console.
var TableUIRules = map[string]TableUIRule{
	"plog":         {DisableCreate: true, DisableUpdate: true, DisableDelete: true},
	"player_alias": {DisableCreate: true, DisableUpdate: true, DisableDelete: true},
}

// UIRuleFor returns the restriction for a table, zero when unrestricted.
func UIRuleFor(table string) TableUIRule {
	return TableUIRules[table]
}

// Blocks reports whether the rule forbids the given mutating action. View is
// never blocked by UI rules.
func (r TableUIRule) Blocks(action TableAction) bool {
	switch action {
	case ActionCreate:
		return r.DisableCreate
	case ActionUpdate:
		return r.DisableUpdate || r.DisableEditUI
	case ActionDelete:
		return r.DisableDelete
	}
	return false
}
