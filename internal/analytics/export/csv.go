package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/warung-pos/warung-pos/internal/ledger"
)

// WriteTransactionsCSV serialises the ledger to a CSV representation.
// The Item column joins each line item as "name (qty)" with semicolons.
func WriteTransactionsCSV(w io.Writer, txs []ledger.Transaction) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"ID", "Tanggal", "Tipe", "Total", "Metode", "Item"}); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := writer.Write([]string{
			tx.ID,
			tx.Date.Format("2006-01-02 15:04:05"),
			string(tx.Type),
			strconv.FormatInt(tx.TotalAmount, 10),
			string(tx.PaymentMethod),
			itemColumn(tx.Items),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func itemColumn(items []ledger.TransactionItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		name := item.ProductName
		if name == "" {
			name = item.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", name, item.Quantity))
	}
	return strings.Join(parts, "; ")
}
