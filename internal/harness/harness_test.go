package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return sc
}

func TestScenario_SaleReplay(t *testing.T) {
	sc := loadTestScenario(t, "sale_replay")
	result := Run(t, sc)

	AssertGolden(t, "sale_replay", result)

	ctx := context.Background()
	sale, err := result.Warehouse.GetSale(ctx, "900")
	require.NoError(t, err)
	assert.Equal(t, int64(20240814), sale.DateKey)
	assert.Equal(t, int64(3017620422003), sale.EAN)

	product, err := result.Warehouse.GetProduct(ctx, 3017620422003)
	require.NoError(t, err)
	assert.Equal(t, 2.54, product.Price.Float64)

	count, err := result.Warehouse.CountSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "two passes leave exactly one fact row")
}

func TestScenario_MessyBatch(t *testing.T) {
	sc := loadTestScenario(t, "messy_batch")
	result := Run(t, sc)

	AssertGolden(t, "messy_batch", result)

	ctx := context.Background()
	hasSale, err := result.Warehouse.HasSale(ctx, "901")
	require.NoError(t, err)
	assert.False(t, hasSale, "incomplete sale group must not produce a fact row")

	client, err := result.Warehouse.GetClient(ctx, "55")
	require.NoError(t, err)
	assert.Equal(t, int64(20240814), client.SignupDate.Int64)

	hasProduct, err := result.Warehouse.HasProduct(ctx, 404)
	require.NoError(t, err)
	assert.False(t, hasProduct, "price updates never create products")
}

func TestLoadScenario_Defaults(t *testing.T) {
	sc := loadTestScenario(t, "messy_batch")
	assert.Equal(t, 1, sc.Passes, "passes defaults to one")
}

func TestLoadScenario_Errors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScenario(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
	t.Run("unknown field", func(t *testing.T) {
		path := write("unknown.yaml", "name: x\nrekords: []\n")
		_, err := LoadScenario(path)
		assert.Error(t, err)
	})
	t.Run("missing name", func(t *testing.T) {
		path := write("noname.yaml", "records:\n  - {actor: u, date: \"45518\", op: INSERT, table: Sales, id: \"1\", field: ean, detail: \"1\"}\n")
		_, err := LoadScenario(path)
		assert.ErrorContains(t, err, "name is required")
	})
	t.Run("no records", func(t *testing.T) {
		path := write("norecords.yaml", "name: empty\n")
		_, err := LoadScenario(path)
		assert.ErrorContains(t, err, "records are required")
	})
}
