package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/qerr"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		in   string
		want Dialect
	}{
		{"mysql", MySQL},
		{"MariaDB", MariaDB},
		{"postgresql", Postgres},
		{" pg ", Postgres},
		{"sqlite3", SQLite},
		{"sqlserver", MSSQL},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	d, err := Parse("oracle")
	require.Error(t, err)
	assert.True(t, qerr.IsInvalidArgument(err))
	assert.Equal(t, Unknown, d)
}

func TestFamily(t *testing.T) {
	assert.Equal(t, FamilyOrdinal, MySQL.Family())
	assert.Equal(t, FamilyOrdinal, MariaDB.Family())
	assert.Equal(t, FamilyCase, Postgres.Family())
	assert.Equal(t, FamilyCase, SQLite.Family())
	assert.Equal(t, FamilyUnsupported, MSSQL.Family())
	assert.Equal(t, FamilyUnsupported, Unknown.Family())
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, PlaceholderQuestion, MySQL.Placeholder())
	assert.Equal(t, PlaceholderDollar, Postgres.Placeholder())
	assert.Equal(t, PlaceholderNamed, SQLite.Placeholder())
	assert.Equal(t, PlaceholderAt, MSSQL.Placeholder())
}

func TestString(t *testing.T) {
	assert.Equal(t, "postgres", Postgres.String())
	assert.Equal(t, "dialect(42)", Dialect(42).String())
	assert.Equal(t, "case", FamilyCase.String())

	for _, n := range Names() {
		d, err := Parse(n)
		require.NoError(t, err)
		assert.Equal(t, n, d.String())
	}
}
