package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warung-pos/warung-pos/internal/platform/store"
)

// Catalog owns the product map and its stock counters. Every mutating call
// persists the full snapshot through the store gateway before returning.
type Catalog struct {
	mu      sync.RWMutex
	gateway store.Gateway
	logger  *slog.Logger
	timeout time.Duration

	items map[string]Product
	order []string
}

// New constructs an empty Catalog. Call Load before serving traffic.
func New(gateway store.Gateway, logger *slog.Logger, storeTimeout time.Duration) *Catalog {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Catalog{
		gateway: gateway,
		logger:  logger,
		timeout: storeTimeout,
		items:   make(map[string]Product),
	}
}

// Load hydrates the catalog from the store. A missing key means a fresh
// store and leaves the catalog empty.
func (c *Catalog) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := c.gateway.Load(ctx, store.KeyProducts)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var products []Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return fmt.Errorf("catalog: decode snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]Product, len(products))
	c.order = c.order[:0]
	for _, p := range products {
		if _, seen := c.items[p.ID]; !seen {
			c.order = append(c.order, p.ID)
		}
		c.items[p.ID] = p
	}
	return nil
}

// List returns a snapshot of all products in insertion order.
func (c *Catalog) List() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.items[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Upsert inserts the product when its id is unseen, otherwise replaces it
// wholesale. Missing id and SKU are generated. No stock-safety check is
// applied: price, cost and stock come from the caller as-is.
func (c *Catalog) Upsert(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.SKU == "" {
		p.SKU = fmt.Sprintf("SKU-%d", time.Now().UnixMilli())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.items[p.ID]
	if !exists {
		c.order = append(c.order, p.ID)
	}
	previous := c.items[p.ID]
	c.items[p.ID] = p

	if err := c.persistLocked(ctx); err != nil {
		if exists {
			c.items[p.ID] = previous
		} else {
			delete(c.items, p.ID)
			c.order = c.order[:len(c.order)-1]
		}
		return Product{}, err
	}
	return p, nil
}

// Remove deletes the product. Removing an unknown id is a no-op.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, ok := c.items[id]
	if !ok {
		return nil
	}
	delete(c.items, id)
	idx := -1
	for i, oid := range c.order {
		if oid == id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		c.order = append(c.order[:idx], c.order[idx+1:]...)
	}

	if err := c.persistLocked(ctx); err != nil {
		c.items[id] = previous
		if idx >= 0 {
			c.order = append(c.order, "")
			copy(c.order[idx+1:], c.order[idx:])
			c.order[idx] = id
		}
		return err
	}
	return nil
}

// AdjustStock applies stock += delta unconditionally. The counter may go
// negative; blocking an oversell is cart-level policy, not catalog policy.
func (c *Catalog) AdjustStock(ctx context.Context, id string, delta int) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.Stock += delta
	c.items[id] = p

	if err := c.persistLocked(ctx); err != nil {
		p.Stock -= delta
		c.items[id] = p
		return Product{}, err
	}
	return p, nil
}

// ApplyDeltas applies a set of per-product stock deltas as one unit. Every
// target must exist; otherwise nothing is changed and ErrNotFound is
// returned. On a persistence failure the in-memory state is rolled back.
func (c *Catalog) ApplyDeltas(ctx context.Context, deltas map[string]int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range deltas {
		if _, ok := c.items[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	for id, delta := range deltas {
		p := c.items[id]
		p.Stock += delta
		c.items[id] = p
	}

	if err := c.persistLocked(ctx); err != nil {
		for id, delta := range deltas {
			p := c.items[id]
			p.Stock -= delta
			c.items[id] = p
		}
		return err
	}
	return nil
}

// Seed bulk-loads products into an empty catalog. With force it replaces
// whatever is there.
func (c *Catalog) Seed(ctx context.Context, products []Product, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) > 0 && !force {
		return ErrNotEmpty
	}
	c.items = make(map[string]Product, len(products))
	c.order = c.order[:0]
	for _, p := range products {
		if _, seen := c.items[p.ID]; !seen {
			c.order = append(c.order, p.ID)
		}
		c.items[p.ID] = p
	}
	return c.persistLocked(ctx)
}

func (c *Catalog) snapshotLocked() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *Catalog) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(c.snapshotLocked())
	if err != nil {
		return fmt.Errorf("catalog: encode snapshot: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.gateway.Save(ctx, store.KeyProducts, payload); err != nil {
		if c.logger != nil {
			c.logger.Error("persist catalog", slog.Any("error", err))
		}
		return err
	}
	return nil
}
