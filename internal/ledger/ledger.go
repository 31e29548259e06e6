package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/platform/store"
)

// Ledger is the append-only transaction history and the sole writer of
// catalog stock deltas. Add validates, applies stock effects all-or-nothing,
// then appends and persists; entries are never updated or removed.
type Ledger struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	gateway store.Gateway
	logger  *slog.Logger
	timeout time.Duration

	entries []Transaction
	lastID  int64
	now     func() time.Time
}

// New constructs an empty Ledger bound to a catalog. Call Load before
// serving traffic.
func New(cat *catalog.Catalog, gateway store.Gateway, logger *slog.Logger, storeTimeout time.Duration) *Ledger {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Ledger{
		catalog: cat,
		gateway: gateway,
		logger:  logger,
		timeout: storeTimeout,
		now:     time.Now,
	}
}

// Load hydrates the history from the store. A missing key means no
// transactions have been posted yet.
func (l *Ledger) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	payload, err := l.gateway.Load(ctx, store.KeyTransactions)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Transaction
	if err := json.Unmarshal(payload, &entries); err != nil {
		return fmt.Errorf("ledger: decode history: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = entries
	for _, tx := range entries {
		var ms int64
		if _, err := fmt.Sscanf(tx.ID, "TRX-%d", &ms); err == nil && ms > l.lastID {
			l.lastID = ms
		}
	}
	return nil
}

// Add posts a transaction: validate, snapshot missing item fields from the
// live catalog, verify the total, apply stock deltas atomically, append,
// persist. On any failure nothing is appended and no stock moves.
func (l *Ledger) Add(ctx context.Context, tx Transaction) (Transaction, error) {
	if err := tx.validateShape(); err != nil {
		return Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Bare items carry only productId and quantity; freeze name, price and
	// cost from the live product now. Items that already carry snapshots
	// are trusted as-is.
	for i := range tx.Items {
		item := &tx.Items[i]
		if item.ProductName != "" || item.PriceAtTransaction != 0 || item.CostAtTransaction != 0 {
			continue
		}
		product, err := l.catalog.Get(item.ProductID)
		if err != nil {
			return Transaction{}, err
		}
		item.ProductName = product.Name
		item.PriceAtTransaction = product.Price
		item.CostAtTransaction = product.Cost
	}

	if got := tx.ItemTotal(); tx.TotalAmount != got {
		return Transaction{}, fmt.Errorf("%w: totalAmount %d does not match item sum %d",
			ErrValidation, tx.TotalAmount, got)
	}

	deltas := make(map[string]int, len(tx.Items))
	for _, item := range tx.Items {
		deltas[item.ProductID] += tx.StockDelta(item.Quantity)
	}

	if err := l.catalog.ApplyDeltas(ctx, deltas); err != nil {
		return Transaction{}, err
	}

	if tx.ID == "" {
		tx.ID = l.nextIDLocked()
	}
	if tx.Date.IsZero() {
		tx.Date = l.now()
	}

	l.entries = append(l.entries, tx)
	if err := l.persistLocked(ctx); err != nil {
		// Undo the append and the stock effects so memory and store stay
		// consistent with each other.
		l.entries = l.entries[:len(l.entries)-1]
		for id := range deltas {
			deltas[id] = -deltas[id]
		}
		if revertErr := l.catalog.ApplyDeltas(ctx, deltas); revertErr != nil && l.logger != nil {
			l.logger.Error("revert stock deltas", slog.Any("error", revertErr))
		}
		return Transaction{}, err
	}
	return tx, nil
}

// List returns a snapshot of the history in append order. Append order is
// posting order; callers must not assume it is sorted by date when entries
// were backdated.
func (l *Ledger) List() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.entries))
	copy(out, l.entries)
	return out
}

// nextIDLocked derives a TRX-<unix millis> id with a monotonic guard so two
// postings in the same millisecond cannot collide.
func (l *Ledger) nextIDLocked() string {
	ms := l.now().UnixMilli()
	if ms <= l.lastID {
		ms = l.lastID + 1
	}
	l.lastID = ms
	return fmt.Sprintf("TRX-%d", ms)
}

func (l *Ledger) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(l.entries)
	if err != nil {
		return fmt.Errorf("ledger: encode history: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	if err := l.gateway.Save(ctx, store.KeyTransactions, payload); err != nil {
		if l.logger != nil {
			l.logger.Error("persist ledger", slog.Any("error", err))
		}
		return err
	}
	return nil
}
