package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/insights"
	"github.com/warung-pos/warung-pos/internal/ledger"
	"github.com/warung-pos/warung-pos/internal/platform/store"
)

// Analyzer produces advice text from a business summary.
type Analyzer interface {
	Analyze(ctx context.Context, summary string) (string, error)
}

// InsightRefreshJob regenerates the cached business insight from the
// current catalog and ledger state.
type InsightRefreshJob struct {
	Gateway   store.Gateway
	Analyzer  Analyzer
	Threshold int
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewInsightRefreshJob wires dependencies for the refresh handler.
func NewInsightRefreshJob(gateway store.Gateway, analyzer Analyzer, threshold int, logger *slog.Logger) *InsightRefreshJob {
	return &InsightRefreshJob{
		Gateway:   gateway,
		Analyzer:  analyzer,
		Threshold: threshold,
		Logger:    logger,
		clock:     time.Now,
	}
}

// Handle processes TaskInsightRefresh tasks.
func (j *InsightRefreshJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil {
		return errors.New("insight refresh: handler not configured")
	}
	j.Logger.Info("starting insight refresh")

	txs, products, err := j.loadState(ctx)
	if err != nil {
		j.Logger.Error("load business state", slog.Any("error", err))
		return err
	}

	summary := insights.BuildSummary(txs, products, j.Threshold, j.clock())
	text, err := j.Analyzer.Analyze(ctx, summary)
	switch {
	case errors.Is(err, insights.ErrMissingCredential):
		j.storeAnalysis(ctx, insights.Analysis{
			GeneratedAt: j.clock(),
			Text:        "Analisis AI belum aktif. Tambahkan kunci API pada konfigurasi server untuk mengaktifkan fitur ini.",
			Degraded:    true,
		})
		return fmt.Errorf("insight refresh: %w: %v", asynq.SkipRetry, err)
	case err != nil:
		j.storeAnalysis(ctx, insights.Analysis{
			GeneratedAt: j.clock(),
			Text:        "Analisis AI sedang tidak tersedia. Coba lagi beberapa saat lagi.",
			Degraded:    true,
		})
		return err
	}

	if err := j.saveAnalysis(ctx, insights.Analysis{GeneratedAt: j.clock(), Text: text}); err != nil {
		j.Logger.Error("persist insight", slog.Any("error", err))
		return err
	}
	j.Logger.Info("insight refresh complete")
	return nil
}

func (j *InsightRefreshJob) loadState(ctx context.Context) ([]ledger.Transaction, []catalog.Product, error) {
	var txs []ledger.Transaction
	raw, err := j.Gateway.Load(ctx, store.KeyTransactions)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, nil, err
	default:
		if err := json.Unmarshal(raw, &txs); err != nil {
			return nil, nil, fmt.Errorf("decode transactions: %w", err)
		}
	}

	var products []catalog.Product
	raw, err = j.Gateway.Load(ctx, store.KeyProducts)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, nil, err
	default:
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, nil, fmt.Errorf("decode products: %w", err)
		}
	}
	return txs, products, nil
}

func (j *InsightRefreshJob) saveAnalysis(ctx context.Context, a insights.Analysis) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return j.Gateway.Save(ctx, store.KeyInsight, raw)
}

// storeAnalysis persists a degraded placeholder; failures are logged only,
// the task error already carries the root cause.
func (j *InsightRefreshJob) storeAnalysis(ctx context.Context, a insights.Analysis) {
	if err := j.saveAnalysis(ctx, a); err != nil {
		j.Logger.Error("persist degraded insight", slog.Any("error", err))
	}
}
