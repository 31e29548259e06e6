package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warung-pos/warung-pos/internal/analytics"
	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/ledger"
)

// Analysis is the cached result of a business insight run.
type Analysis struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Text        string    `json:"text"`
	Degraded    bool      `json:"degraded,omitempty"`
}

var (
	// ErrMissingCredential signals the provider API key was never configured.
	ErrMissingCredential = errors.New("insights: api key not configured")
	// ErrNetwork signals the provider could not be reached.
	ErrNetwork = errors.New("insights: provider unreachable")
	// ErrProvider signals the provider rejected or failed the request.
	ErrProvider = errors.New("insights: provider error")
)

const defaultModel = "gpt-4o-mini"
const maxSampleTransactions = 20

// Config carries the provider settings for the insight service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Service talks to an OpenAI-compatible completion endpoint.
type Service struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewService constructs the insight service. A zero APIKey is allowed;
// Analyze will fail with ErrMissingCredential when called.
func NewService(cfg Config, logger *slog.Logger) *Service {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}
	return &Service{client: client, model: model, timeout: timeout, logger: logger}
}

// Analyze sends the business summary to the provider and returns the
// generated advice text.
func (s *Service) Analyze(ctx context.Context, summary string) (string, error) {
	if s.client == nil {
		return "", ErrMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: summary},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			s.logger.Error("insight provider rejected request", slog.Int("status", apiErr.HTTPStatusCode), slog.Any("error", err))
			return "", fmt.Errorf("%w: %v", ErrProvider, err)
		}
		s.logger.Error("insight provider unreachable", slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrProvider)
	}
	return resp.Choices[0].Message.Content, nil
}

const systemPrompt = "Kamu adalah konsultan bisnis untuk warung dan UMKM di Indonesia. " +
	"Jawab dalam bahasa Indonesia yang santai tapi profesional, maksimal 3 paragraf markdown. " +
	"Beri saran konkret berdasarkan data penjualan dan stok yang diberikan."

// BuildSummary renders the business state as an Indonesian-language prompt.
func BuildSummary(txs []ledger.Transaction, products []catalog.Product, threshold int, now time.Time) string {
	printer := message.NewPrinter(language.Indonesian)

	var b strings.Builder
	b.WriteString("Data usaha per " + now.Format("2 January 2006") + ":\n")
	printer.Fprintf(&b, "- Total pendapatan bulan ini: Rp%d\n", analytics.MonthlySales(txs, now))
	printer.Fprintf(&b, "- Laba kotor keseluruhan: Rp%d\n", analytics.GrossProfit(txs, time.Time{}, time.Time{}))
	printer.Fprintf(&b, "- Jumlah produk terdaftar: %d\n", len(products))

	if low := analytics.LowStock(products, threshold); len(low) > 0 {
		names := make([]string, 0, len(low))
		for _, p := range low {
			names = append(names, fmt.Sprintf("%s (sisa %d)", p.Name, p.Stock))
		}
		b.WriteString("- Stok menipis: " + strings.Join(names, ", ") + "\n")
	}

	sales := make([]ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == ledger.TypeSale {
			sales = append(sales, tx)
		}
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].Date.After(sales[j].Date) })
	if len(sales) > maxSampleTransactions {
		sales = sales[:maxSampleTransactions]
	}
	if len(sales) > 0 {
		b.WriteString("\nPenjualan terakhir:\n")
		for _, tx := range sales {
			items := make([]string, 0, len(tx.Items))
			for _, item := range tx.Items {
				items = append(items, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
			}
			printer.Fprintf(&b, "- %s: Rp%d (%s)\n", tx.Date.Format("2006-01-02"), tx.TotalAmount, strings.Join(items, ", "))
		}
	}

	b.WriteString("\nBerikan analisis singkat dan saran untuk meningkatkan usaha ini.")
	return b.String()
}
