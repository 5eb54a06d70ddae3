package inflation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytd-inflation.json")

	ledger, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Empty(t, ledger.Entries())

	require.NoError(t, ledger.Put("2024-01", 5.0))
	require.NoError(t, ledger.Put("2024-02", 3.0))

	reloaded, err := LoadLedger(path)
	require.NoError(t, err)

	got, ok := reloaded.Get("2024-01")
	require.True(t, ok)
	assert.Equal(t, 5.0, got)
	assert.Len(t, reloaded.Entries(), 2)
}

func TestLedgerPutIsIdempotentOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytd-inflation.json")

	ledger, err := LoadLedger(path)
	require.NoError(t, err)

	require.NoError(t, ledger.Put("2024-05", 2.5))
	require.NoError(t, ledger.Put("2024-05", 2.5))
	require.NoError(t, ledger.Put("2024-05", 2.7)) // recompute wins

	reloaded, err := LoadLedger(path)
	require.NoError(t, err)
	got, _ := reloaded.Get("2024-05")
	assert.Equal(t, 2.7, got)
	assert.Len(t, reloaded.Entries(), 1)
}

func TestYearToDateCompounding(t *testing.T) {
	ledger, err := LoadLedger(filepath.Join(t.TempDir(), "ytd-inflation.json"))
	require.NoError(t, err)

	require.NoError(t, ledger.Put("2024-01", 5.0))
	require.NoError(t, ledger.Put("2024-02", 3.0))

	// ((1.05 * 1.03) - 1) * 100 = 8.15
	ytd, err := ledger.YearToDate(2024, 2)
	require.NoError(t, err)
	assert.InDelta(t, 8.15, ytd, 1e-9)
}

func TestYearToDateAssociativeOrder(t *testing.T) {
	ledger, err := LoadLedger(filepath.Join(t.TempDir(), "ytd-inflation.json"))
	require.NoError(t, err)

	require.NoError(t, ledger.Put("2024-01", 4.0))
	require.NoError(t, ledger.Put("2024-02", -1.5))
	require.NoError(t, ledger.Put("2024-03", 2.2))

	ytd, err := ledger.YearToDate(2024, 3)
	require.NoError(t, err)

	expected := ((1 + 4.0/100) * (1 + -1.5/100) * (1 + 2.2/100) - 1) * 100
	assert.InDelta(t, round2(expected), ytd, 1e-9)
}

func TestYearToDateMissingMonth(t *testing.T) {
	ledger, err := LoadLedger(filepath.Join(t.TempDir(), "ytd-inflation.json"))
	require.NoError(t, err)

	require.NoError(t, ledger.Put("2024-01", 5.0))
	require.NoError(t, ledger.Put("2024-03", 3.0))

	_, err = ledger.YearToDate(2024, 3)
	assert.Error(t, err, "February is missing")
}

func TestLoadLedgerCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytd-inflation.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadLedger(path)
	assert.Error(t, err)
}
