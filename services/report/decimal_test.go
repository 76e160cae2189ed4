package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecimalScan(t *testing.T) {
	var d Decimal

	require.NoError(t, d.Scan([]byte("1234567.90")))
	require.Equal(t, Decimal("1234567.90"), d)

	require.NoError(t, d.Scan("1234567890123456.78"))
	require.Equal(t, Decimal("1234567890123456.78"), d)

	require.NoError(t, d.Scan(int64(500000)))
	require.Equal(t, Decimal("500000"), d)

	require.NoError(t, d.Scan(1234567.9))
	require.Equal(t, Decimal("1234567.90"), d)

	require.NoError(t, d.Scan(nil))
	require.Equal(t, Decimal(""), d)

	require.Error(t, d.Scan(true))
}

func TestDecimalColumnIsTextOnSQLite(t *testing.T) {
	db := newWorkshopDB(t)

	types, err := db.Migrator().ColumnTypes(&WorkOrder{})
	require.NoError(t, err)

	found := 0
	for _, ct := range types {
		switch ct.Name() {
		case "GrossJobSales", "TotalInvoice", "TotalPartWithholdingTax":
			require.True(t, strings.EqualFold("text", ct.DatabaseTypeName()), "%s is %s", ct.Name(), ct.DatabaseTypeName())
			found++
		}
	}
	require.Equal(t, 3, found)
}
