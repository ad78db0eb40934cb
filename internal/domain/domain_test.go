package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	t.Run("valid sides", func(t *testing.T) {
		for _, s := range []string{"0", "1", "2"} {
			side, err := ParseSide(s)
			require.NoError(t, err)
			assert.NotEmpty(t, side.Label())
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, s := range []string{"-1", "3", "99"} {
			_, err := ParseSide(s)
			assert.Error(t, err)
		}
	})

	t.Run("non-numeric", func(t *testing.T) {
		_, err := ParseSide("cop")
		require.Error(t, err)
		appErr, ok := err.(*AppError)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.Status)
	})
}

func TestParseTableAction(t *testing.T) {
	t.Run("known actions", func(t *testing.T) {
		for _, s := range []string{"view", "create", "update", "delete"} {
			a, ok := ParseTableAction(s)
			assert.True(t, ok)
			assert.Equal(t, TableAction(s), a)
		}
	})

	t.Run("unknown action denies", func(t *testing.T) {
		for _, s := range []string{"", "drop", "VIEW", "truncate"} {
			_, ok := ParseTableAction(s)
			assert.False(t, ok, s)
		}
	})
}

func TestParsePanelAction(t *testing.T) {
	t.Run("all seven capabilities parse", func(t *testing.T) {
		assert.Len(t, PanelActions, 7)
		for _, a := range PanelActions {
			got, ok := ParsePanelAction(string(a))
			assert.True(t, ok)
			assert.Equal(t, a, got)
		}
	})

	t.Run("unknown action denies", func(t *testing.T) {
		_, ok := ParsePanelAction("user_delete")
		assert.False(t, ok)
	})
}

func TestTablePermissionRowAllows(t *testing.T) {
	row := TablePermissionRow{CanView: true, CanUpdate: true}

	assert.True(t, row.Allows(ActionView))
	assert.False(t, row.Allows(ActionCreate))
	assert.True(t, row.Allows(ActionUpdate))
	assert.False(t, row.Allows(ActionDelete))
	assert.False(t, row.Allows(TableAction("drop")))
}

func TestPanelPermissionRowAllows(t *testing.T) {
	row := PanelPermissionRow{CanAdminAccess: true, CanRoleCreate: true}

	assert.True(t, row.Allows(PanelAccess))
	assert.True(t, row.Allows(PanelRoleCreate))
	assert.False(t, row.Allows(PanelUserCreate))
	assert.False(t, row.Allows(PanelAction("unknown")))
}

func TestCaseStatus(t *testing.T) {
	t.Run("toggle twice restores original", func(t *testing.T) {
		assert.Equal(t, CaseOpen, CaseOpen.Toggle().Toggle())
		assert.Equal(t, CaseClosed, CaseClosed.Toggle().Toggle())
	})

	t.Run("unknown status coerced to open", func(t *testing.T) {
		assert.Equal(t, CaseOpen, ParseCaseStatus("escalated"))
		assert.Equal(t, CaseOpen, ParseCaseStatus(""))
		assert.Equal(t, CaseClosed, ParseCaseStatus("closed"))
	})
}

func TestSupportCaseInputNormalize(t *testing.T) {
	in := SupportCaseInput{
		CaseType:      "  RDM ",
		Area:          "   ",
		SupporterName: " admin1",
		Scenario:      "scn42 ",
	}
	in.Normalize()

	assert.Equal(t, "RDM", in.CaseType)
	assert.Equal(t, "Support", in.Area)
	assert.Equal(t, "admin1", in.SupporterName)
	assert.Equal(t, "scn42", in.Scenario)
}

func TestParseQuickAction(t *testing.T) {
	t.Run("restore resets active sold alive", func(t *testing.T) {
		_, effect, ok := ParseQuickAction("restore")
		require.True(t, ok)
		require.NotNil(t, effect.Alive)
		require.NotNil(t, effect.Active)
		require.NotNil(t, effect.Sold)
		assert.True(t, *effect.Alive)
		assert.True(t, *effect.Active)
		assert.False(t, *effect.Sold)
		assert.Nil(t, effect.Locked)
	})

	t.Run("kill and revive flip alive only", func(t *testing.T) {
		_, kill, ok := ParseQuickAction("kill")
		require.True(t, ok)
		assert.False(t, *kill.Alive)
		assert.Nil(t, kill.Locked)

		_, revive, ok := ParseQuickAction("revive")
		require.True(t, ok)
		assert.True(t, *revive.Alive)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		_, _, ok := ParseQuickAction("explode")
		assert.False(t, ok)
	})
}

func TestParseCheckbox(t *testing.T) {
	for _, v := range []string{"1", "true", "on", "yes", "True", "ON"} {
		assert.True(t, ParseCheckbox(v), v)
	}
	for _, v := range []string{"", "0", "false", "off", "no"} {
		assert.False(t, ParseCheckbox(v), v)
	}
}

func TestTableSchema(t *testing.T) {
	schema := TableSchema{
		Name: "kvstore",
		Columns: []Column{
			{Name: "pid", DataType: "character varying", PrimaryKey: true},
			{Name: "k", DataType: "character varying", PrimaryKey: true},
			{Name: "side", DataType: "integer", PrimaryKey: true},
			{Name: "v", DataType: "text"},
			{Name: "t", DataType: "text", Nullable: true},
		},
	}

	assert.Equal(t, []string{"pid", "k", "side", "v", "t"}, schema.ColumnNames())
	assert.Equal(t, []string{"pid", "k", "side"}, schema.PrimaryKey())
	assert.True(t, schema.HasColumn("v"))
	assert.False(t, schema.HasColumn("missing"))
}

func TestTableUIRules(t *testing.T) {
	t.Run("plog is read only", func(t *testing.T) {
		rule := UIRuleFor("plog")
		assert.True(t, rule.Blocks(ActionCreate))
		assert.True(t, rule.Blocks(ActionUpdate))
		assert.True(t, rule.Blocks(ActionDelete))
		assert.False(t, rule.Blocks(ActionView))
	})

	t.Run("unlisted table unrestricted", func(t *testing.T) {
		rule := UIRuleFor("houses")
		assert.False(t, rule.Blocks(ActionCreate))
		assert.False(t, rule.Blocks(ActionUpdate))
		assert.False(t, rule.Blocks(ActionDelete))
	})

	t.Run("edit ui disabled blocks update", func(t *testing.T) {
		rule := TableUIRule{DisableEditUI: true}
		assert.True(t, rule.Blocks(ActionUpdate))
		assert.False(t, rule.Blocks(ActionDelete))
	})
}

func TestIsKVField(t *testing.T) {
	assert.True(t, IsKVField("cash"))
	assert.True(t, IsKVField("birthlocation"))
	assert.False(t, IsKVField("gear"))
	assert.False(t, IsKVField("licenses"))
	assert.False(t, IsKVField(""))
}
