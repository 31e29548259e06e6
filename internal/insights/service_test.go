package insights

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/ledger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeProvider(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyze(t *testing.T) {
	srv := fakeProvider(t, http.StatusOK, "Fokus ke stok kopi.")
	svc := NewService(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, discardLogger())

	text, err := svc.Analyze(context.Background(), "ringkasan usaha")
	require.NoError(t, err)
	require.Equal(t, "Fokus ke stok kopi.", text)
}

func TestAnalyzeMissingCredential(t *testing.T) {
	svc := NewService(Config{}, discardLogger())

	_, err := svc.Analyze(context.Background(), "ringkasan")
	require.ErrorIs(t, err, ErrMissingCredential)
}

func TestAnalyzeProviderError(t *testing.T) {
	srv := fakeProvider(t, http.StatusTooManyRequests, "")
	svc := NewService(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, discardLogger())

	_, err := svc.Analyze(context.Background(), "ringkasan")
	require.ErrorIs(t, err, ErrProvider)
}

func TestAnalyzeNetworkError(t *testing.T) {
	svc := NewService(Config{APIKey: "test-key", BaseURL: "http://127.0.0.1:1/v1", Timeout: time.Second}, discardLogger())

	_, err := svc.Analyze(context.Background(), "ringkasan")
	require.ErrorIs(t, err, ErrNetwork)
}

func TestBuildSummary(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.Local)
	txs := []ledger.Transaction{
		{
			Type: ledger.TypeSale,
			Date: now,
			Items: []ledger.TransactionItem{
				{ProductID: "1", ProductName: "Kopi Arabika Gayo", Quantity: 3, PriceAtTransaction: 25000, CostAtTransaction: 15000},
			},
			TotalAmount:   75000,
			PaymentMethod: ledger.PaymentCash,
		},
	}
	products := []catalog.Product{
		{ID: "1", Name: "Kopi Arabika Gayo", Stock: 47},
		{ID: "2", Name: "Gula Pasir 1kg", Stock: 4},
	}

	summary := BuildSummary(txs, products, 10, now)
	require.Contains(t, summary, "Rp75.000")
	require.Contains(t, summary, "Gula Pasir 1kg (sisa 4)")
	require.Contains(t, summary, "Kopi Arabika Gayo x3")
	require.NotContains(t, summary, "Kopi Arabika Gayo (sisa")
}

func TestBuildSummaryCapsSampleSize(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.Local)
	txs := make([]ledger.Transaction, 0, 30)
	for i := 0; i < 30; i++ {
		txs = append(txs, ledger.Transaction{
			Type:          ledger.TypeSale,
			Date:          now.Add(-time.Duration(i) * time.Hour),
			Items:         []ledger.TransactionItem{{ProductID: "1", ProductName: "Kopi", Quantity: 1}},
			TotalAmount:   25000,
			PaymentMethod: ledger.PaymentCash,
		})
	}

	summary := BuildSummary(txs, nil, 10, now)
	require.Equal(t, maxSampleTransactions, strings.Count(summary, "Kopi x1"))
}
