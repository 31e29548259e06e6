package ledger

import (
	"errors"
	"fmt"
	"time"
)

// TransactionType enumerates supported ledger postings.
type TransactionType string

const (
	// TypeSale decreases stock per item.
	TypeSale TransactionType = "SALE"
	// TypePurchase increases stock per item.
	TypePurchase TransactionType = "PURCHASE"
)

// PaymentMethod enumerates how a transaction was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentQRIS     PaymentMethod = "QRIS"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// TransactionItem is one line of a transaction. ProductID is a weak
// reference used for lookup only; name, price and cost are snapshots frozen
// at posting time so later catalog edits never alter history.
type TransactionItem struct {
	ProductID          string `json:"productId"`
	ProductName        string `json:"productName"`
	Quantity           int    `json:"quantity"`
	PriceAtTransaction int64  `json:"priceAtTransaction"`
	CostAtTransaction  int64  `json:"costAtTransaction"`
}

// Transaction is an immutable ledger entry. There is no update or delete;
// corrections are posted as offsetting transactions.
type Transaction struct {
	ID            string            `json:"id"`
	Date          time.Time         `json:"date"`
	Type          TransactionType   `json:"type"`
	Items         []TransactionItem `json:"items"`
	TotalAmount   int64             `json:"totalAmount"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Notes         string            `json:"notes,omitempty"`
	User          string            `json:"user,omitempty"`
}

// ErrValidation indicates a malformed transaction rejected before any
// mutation took place.
var ErrValidation = errors.New("ledger: invalid transaction")

// ItemTotal returns the sum of price snapshots times quantities.
func (t Transaction) ItemTotal() int64 {
	var total int64
	for _, item := range t.Items {
		total += item.PriceAtTransaction * int64(item.Quantity)
	}
	return total
}

// CostTotal returns the sum of cost snapshots times quantities.
func (t Transaction) CostTotal() int64 {
	var total int64
	for _, item := range t.Items {
		total += item.CostAtTransaction * int64(item.Quantity)
	}
	return total
}

// StockDelta returns the signed per-item stock effect of the posting.
func (t Transaction) StockDelta(quantity int) int {
	if t.Type == TypeSale {
		return -quantity
	}
	return quantity
}

func (t Transaction) validateShape() error {
	switch t.Type {
	case TypeSale, TypePurchase:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrValidation, t.Type)
	}
	switch t.PaymentMethod {
	case PaymentCash, PaymentQRIS, PaymentTransfer:
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, t.PaymentMethod)
	}
	if len(t.Items) == 0 {
		return fmt.Errorf("%w: items must not be empty", ErrValidation)
	}
	for i, item := range t.Items {
		if item.ProductID == "" {
			return fmt.Errorf("%w: item %d missing product id", ErrValidation, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i)
		}
		if item.PriceAtTransaction < 0 || item.CostAtTransaction < 0 {
			return fmt.Errorf("%w: item %d negative price or cost", ErrValidation, i)
		}
	}
	return nil
}
