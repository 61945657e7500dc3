package normalize

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datamartlab/logmart/internal/logrec"
	"github.com/datamartlab/logmart/internal/rules"
	"github.com/datamartlab/logmart/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMapHeader(t *testing.T) {
	positions, err := MapHeader([]string{
		"actor_id", "date", "operation", "target_table", "target_id", "field_name", "detail",
	})
	require.NoError(t, err)
	assert.Equal(t, [7]int{0, 1, 2, 3, 4, 5, 6}, positions)
}

func TestMapHeader_AliasesAndPadding(t *testing.T) {
	positions, err := MapHeader([]string{
		"Unnamed: 0", "id_user", "Date", "Action", "table_insert", "id_ligne", "champs", "Detail",
	})
	require.NoError(t, err)
	assert.Equal(t, [7]int{1, 2, 3, 4, 5, 6, 7}, positions)
}

func TestMapHeader_NonBreakingSpace(t *testing.T) {
	// Excel exports sometimes pad headers with U+00A0.
	positions, err := MapHeader([]string{
		"actor_id ", "date", "operation", "target table", "target_id", "field_name", "detail",
	})
	require.NoError(t, err)
	assert.Equal(t, [7]int{0, 1, 2, 3, 4, 5, 6}, positions)
}

func TestMapHeader_Errors(t *testing.T) {
	base := []string{"actor_id", "date", "operation", "target_table", "target_id", "field_name", "detail"}

	t.Run("unknown column", func(t *testing.T) {
		cols := append([]string{"mystery"}, base...)
		_, err := MapHeader(cols)
		assert.ErrorContains(t, err, "unexpected column")
	})
	t.Run("duplicate role", func(t *testing.T) {
		cols := append([]string{"user_id"}, base...)
		_, err := MapHeader(cols)
		assert.ErrorContains(t, err, "twice")
	})
	t.Run("missing role", func(t *testing.T) {
		_, err := MapHeader(base[:6])
		assert.ErrorContains(t, err, "missing column")
	})
}

func TestNormalizer_Run(t *testing.T) {
	st := newTestStore(t)
	n := &Normalizer{Log: st, Rules: rules.Default()}

	batch := Batch{
		{ActorID: "u1", Date: "45518", Operation: "INSERT", TargetTable: "Sales", TargetID: "900", FieldName: "ean", Detail: "3017620422003"},
		{ActorID: "u1", Date: "45518", Operation: "UPDATE", TargetTable: "Products", TargetID: "3017620422003", FieldName: "price", Detail: "2,54"},
		{ActorID: "u2", Date: "45519", Operation: "INSERT", TargetTable: "Client", TargetID: "42", FieldName: "signup_date", Detail: "14/08/2024"},
	}

	report, err := n.Run(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Accepted)
	assert.Equal(t, 0, report.Dropped)

	entries, err := st.ByTable(context.Background(), "Products")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].LogID)
	assert.Equal(t, logrec.Number(2.54), entries[0].Detail)

	entries, err = st.ByTable(context.Background(), "Client")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, logrec.Timestamp("2024-08-14 00:00:00"), entries[0].Detail)
}

func TestNormalizer_Run_DropsWithDiagnostics(t *testing.T) {
	st := newTestStore(t)
	n := &Normalizer{Log: st, Rules: rules.Default()}

	batch := Batch{
		{ActorID: "u1", Date: "45518", Operation: "MERGE", TargetTable: "Sales", TargetID: "1", FieldName: "ean", Detail: "1"},
		{ActorID: "u1", Date: "soon", Operation: "INSERT", TargetTable: "Sales", TargetID: "2", FieldName: "ean", Detail: "1"},
		{ActorID: "u1", Date: "45518", Operation: "UPDATE", TargetTable: "Products", TargetID: "3", FieldName: "price", Detail: "cheap"},
		{ActorID: "u1", Date: "45518", Operation: "INSERT", TargetTable: "Sales", TargetID: "4", FieldName: "ean", Detail: "5"},
	}

	report, err := n.Run(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 3, report.Dropped)

	require.Len(t, report.Diagnostics, 3)
	assert.Equal(t, 1, report.Diagnostics[0].Row)
	assert.Equal(t, ReasonOperation, report.Diagnostics[0].Reason)
	assert.Equal(t, ReasonEventTime, report.Diagnostics[1].Reason)
	assert.Equal(t, 2, report.Diagnostics[1].Row)
	assert.Equal(t, ReasonDetail, report.Diagnostics[2].Reason)

	// The surviving record still gets a contiguous ID sequence.
	entries, err := st.ByTable(context.Background(), "Sales")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].LogID)
	assert.Equal(t, "4", entries[0].TargetID)
}

func TestNormalizer_Run_ContinuesIDSequence(t *testing.T) {
	st := newTestStore(t)
	n := &Normalizer{Log: st, Rules: rules.Default()}

	first := Batch{
		{ActorID: "u1", Date: "45518", Operation: "INSERT", TargetTable: "Sales", TargetID: "1", FieldName: "ean", Detail: "1"},
	}
	_, err := n.Run(context.Background(), first)
	require.NoError(t, err)

	second := Batch{
		{ActorID: "u1", Date: "45518", Operation: "INSERT", TargetTable: "Sales", TargetID: "2", FieldName: "ean", Detail: "2"},
	}
	_, err = n.Run(context.Background(), second)
	require.NoError(t, err)

	entries, err := st.ByTable(context.Background(), "Sales")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].LogID)
	assert.Equal(t, int64(2), entries[1].LogID)
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"actor_id,date,operation,target_table,target_id,field_name,detail",
		"u1,45518,INSERT,Sales,900,ean,3017620422003",
		`u1,45518,UPDATE,Products,3017620422003,price,"2,54"`,
	}, "\n")

	batch, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "u1", batch[0].ActorID)
	assert.Equal(t, "45518", batch[0].Date)
	assert.Equal(t, "2,54", batch[1].Detail)
}

func TestReadCSV_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.ErrorContains(t, err, "empty input")
	})
	t.Run("bad header", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n"))
		assert.Error(t, err)
	})
}
