package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/platform/store"
)

func newTestLedger(t *testing.T) (*Ledger, *catalog.Catalog, *store.Memory) {
	t.Helper()
	gw := store.NewMemory()
	cat := catalog.New(gw, nil, time.Second)
	led := New(cat, gw, nil, time.Second)

	ctx := context.Background()
	seed := []catalog.Product{
		{ID: "1", Name: "Kopi Arabika Gayo", SKU: "KOP-001", Category: "Minuman", Price: 25000, Cost: 15000, Stock: 50, Unit: "cup"},
		{ID: "2", Name: "Roti Bakar Coklat", SKU: "ROT-001", Category: "Makanan", Price: 18000, Cost: 8000, Stock: 20, Unit: "porsi"},
	}
	require.NoError(t, cat.Seed(ctx, seed, false))
	return led, cat, gw
}

func saleOf(productID string, quantity int, total int64) Transaction {
	return Transaction{
		Type:          TypeSale,
		Items:         []TransactionItem{{ProductID: productID, Quantity: quantity}},
		TotalAmount:   total,
		PaymentMethod: PaymentCash,
	}
}

func TestPostSaleAppliesStockAndSnapshots(t *testing.T) {
	led, cat, _ := newTestLedger(t)
	ctx := context.Background()

	posted, err := led.Add(ctx, saleOf("1", 3, 75000))
	require.NoError(t, err)

	require.NotEmpty(t, posted.ID)
	require.False(t, posted.Date.IsZero())
	require.Equal(t, "Kopi Arabika Gayo", posted.Items[0].ProductName)
	require.Equal(t, int64(25000), posted.Items[0].PriceAtTransaction)
	require.Equal(t, int64(15000), posted.Items[0].CostAtTransaction)

	p, err := cat.Get("1")
	require.NoError(t, err)
	require.Equal(t, 47, p.Stock)
}

func TestPostUnknownProductLeavesStateUntouched(t *testing.T) {
	led, cat, gw := newTestLedger(t)
	ctx := context.Background()

	productsBefore, err := gw.Load(ctx, store.KeyProducts)
	require.NoError(t, err)
	entriesBefore := led.List()

	_, err = led.Add(ctx, saleOf("999", 1, 25000))
	require.ErrorIs(t, err, catalog.ErrNotFound)

	require.Len(t, led.List(), len(entriesBefore))
	productsAfter, err := gw.Load(ctx, store.KeyProducts)
	require.NoError(t, err)
	require.Equal(t, productsBefore, productsAfter, "persisted catalog must be byte-for-byte unchanged")

	p, _ := cat.Get("1")
	require.Equal(t, 50, p.Stock)
}

func TestPostPurchaseIncreasesStock(t *testing.T) {
	led, cat, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := led.Add(ctx, saleOf("1", 3, 75000))
	require.NoError(t, err)

	_, err = led.Add(ctx, Transaction{
		Type:          TypePurchase,
		Items:         []TransactionItem{{ProductID: "1", Quantity: 10}},
		TotalAmount:   250000,
		PaymentMethod: PaymentTransfer,
	})
	require.NoError(t, err)

	p, _ := cat.Get("1")
	require.Equal(t, 57, p.Stock)
}

func TestTotalMismatchRejected(t *testing.T) {
	led, cat, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := led.Add(ctx, saleOf("1", 3, 99999))
	require.ErrorIs(t, err, ErrValidation)

	require.Empty(t, led.List())
	p, _ := cat.Get("1")
	require.Equal(t, 50, p.Stock)
}

func TestShapeValidation(t *testing.T) {
	led, _, _ := newTestLedger(t)
	ctx := context.Background()

	cases := map[string]Transaction{
		"empty items": {Type: TypeSale, PaymentMethod: PaymentCash},
		"zero quantity": {Type: TypeSale, PaymentMethod: PaymentCash,
			Items: []TransactionItem{{ProductID: "1", Quantity: 0}}},
		"negative quantity": {Type: TypeSale, PaymentMethod: PaymentCash,
			Items: []TransactionItem{{ProductID: "1", Quantity: -2}}},
		"unknown type": {Type: "REFUND", PaymentMethod: PaymentCash,
			Items: []TransactionItem{{ProductID: "1", Quantity: 1}}},
		"unknown payment": {Type: TypeSale, PaymentMethod: "CHEQUE",
			Items: []TransactionItem{{ProductID: "1", Quantity: 1}}},
		"missing product id": {Type: TypeSale, PaymentMethod: PaymentCash,
			Items: []TransactionItem{{Quantity: 1}}},
	}
	for name, tx := range cases {
		_, err := led.Add(ctx, tx)
		require.ErrorIs(t, err, ErrValidation, name)
	}
	require.Empty(t, led.List())
}

func TestExplicitSnapshotsSurviveProductEdits(t *testing.T) {
	led, cat, _ := newTestLedger(t)
	ctx := context.Background()

	posted, err := led.Add(ctx, saleOf("2", 2, 36000))
	require.NoError(t, err)
	require.Equal(t, int64(18000), posted.Items[0].PriceAtTransaction)

	// Reprice and then delete the product; history must keep the snapshot.
	p, _ := cat.Get("2")
	p.Price = 99000
	_, err = cat.Upsert(ctx, p)
	require.NoError(t, err)
	require.NoError(t, cat.Remove(ctx, "2"))

	entries := led.List()
	require.Len(t, entries, 1)
	require.Equal(t, int64(18000), entries[0].Items[0].PriceAtTransaction)
	require.Equal(t, "Roti Bakar Coklat", entries[0].Items[0].ProductName)
}

func TestAppendOrderPreservedAcrossReload(t *testing.T) {
	led, cat, gw := newTestLedger(t)
	ctx := context.Background()

	backdated := saleOf("1", 1, 25000)
	backdated.Date = time.Date(2020, 1, 1, 10, 0, 0, 0, time.Local)
	_, err := led.Add(ctx, backdated)
	require.NoError(t, err)
	_, err = led.Add(ctx, saleOf("1", 2, 50000))
	require.NoError(t, err)

	reloadedCat := catalog.New(gw, nil, time.Second)
	require.NoError(t, reloadedCat.Load(ctx))
	reloaded := New(reloadedCat, gw, nil, time.Second)
	require.NoError(t, reloaded.Load(ctx))

	original := led.List()
	restored := reloaded.List()
	require.Len(t, restored, 2)
	for i := range original {
		require.Equal(t, original[i].ID, restored[i].ID, "append order must survive reload")
	}
	require.ElementsMatch(t, cat.List(), reloadedCat.List())
}

func TestTransactionIDsAreMonotonic(t *testing.T) {
	led, _, _ := newTestLedger(t)
	ctx := context.Background()

	// Freeze the clock so every posting lands in the same millisecond.
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	led.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		posted, err := led.Add(ctx, saleOf("1", 1, 25000))
		require.NoError(t, err)
		require.False(t, seen[posted.ID], "duplicate id %s", posted.ID)
		seen[posted.ID] = true
	}
}

func TestStockConservationProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	led, cat, _ := newTestLedger(t)
	ctx := context.Background()

	expected := map[string]int{}
	for _, p := range cat.List() {
		expected[p.ID] = p.Stock
	}

	ids := []string{"1", "2"}
	for i := 0; i < 200; i++ {
		id := ids[rng.Intn(len(ids))]
		quantity := 1 + rng.Intn(5)
		product, err := cat.Get(id)
		require.NoError(t, err)

		tx := Transaction{
			Type:          TypeSale,
			Items:         []TransactionItem{{ProductID: id, Quantity: quantity}},
			TotalAmount:   product.Price * int64(quantity),
			PaymentMethod: PaymentCash,
		}
		delta := -quantity
		if rng.Intn(2) == 0 {
			tx.Type = TypePurchase
			delta = quantity
		}

		_, err = led.Add(ctx, tx)
		require.NoError(t, err)
		expected[id] += delta
	}

	for id, want := range expected {
		p, err := cat.Get(id)
		require.NoError(t, err)
		require.Equal(t, want, p.Stock, fmt.Sprintf("product %s", id))
	}
	require.Len(t, led.List(), 200)
}

func TestLedgerPersistFailureRevertsStock(t *testing.T) {
	gw := &flakyGateway{Memory: store.NewMemory()}
	cat := catalog.New(gw, nil, time.Second)
	led := New(cat, gw, nil, time.Second)
	ctx := context.Background()

	require.NoError(t, cat.Seed(ctx, []catalog.Product{
		{ID: "1", Name: "Kopi", Price: 25000, Cost: 15000, Stock: 50},
	}, false))

	gw.failKey = store.KeyTransactions
	_, err := led.Add(ctx, saleOf("1", 3, 75000))
	require.ErrorIs(t, err, store.ErrUnavailable)

	require.Empty(t, led.List())
	p, _ := cat.Get("1")
	require.Equal(t, 50, p.Stock)
}

type flakyGateway struct {
	*store.Memory
	failKey string
}

func (f *flakyGateway) Save(ctx context.Context, key string, value []byte) error {
	if key == f.failKey {
		return store.ErrUnavailable
	}
	return f.Memory.Save(ctx, key, value)
}
