// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 生成、シミュレーション、投入、検証の各段階から利用する。
type MetricsCollector interface {
	RecordCompaniesGenerated(count int)
	RecordPartition(companies, sessions, churned int, duration time.Duration)
	RecordChurn(month int)
	RecordRowsLoaded(table string, rows int)
	RecordLoad(duration time.Duration)
	RecordValidationMismatch(table string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	companiesGenerated prometheus.Counter
	sessionsGenerated  prometheus.Counter
	companiesChurned   prometheus.Counter
	churnMonth         prometheus.Histogram
	partitionDuration  prometheus.Histogram
	rowsLoaded         *prometheus.CounterVec
	loadDuration       prometheus.Histogram
	validationMismatch *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		companiesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saasseed_companies_generated_total",
			Help: "生成された企業の合計数",
		}),
		sessionsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saasseed_sessions_generated_total",
			Help: "生成されたセッションの合計数",
		}),
		companiesChurned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saasseed_companies_churned_total",
			Help: "期間内に解約した企業の合計数",
		}),
		churnMonth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "saasseed_churn_month",
			Help:    "解約が発生した月インデックスの分布",
			Buckets: prometheus.LinearBuckets(0, 1, 12),
		}),
		partitionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "saasseed_partition_duration_seconds",
			Help:    "パーティション単位のシミュレーション所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		rowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saasseed_rows_loaded_total",
			Help: "テーブル別の投入行数",
		}, []string{"table"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "saasseed_load_duration_seconds",
			Help:    "一括投入の所要時間（秒）",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		validationMismatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saasseed_validation_mismatch_total",
			Help: "行数検証で不一致となったテーブル別の回数",
		}, []string{"table"}),
	}

	reg.MustRegister(
		c.companiesGenerated,
		c.sessionsGenerated,
		c.companiesChurned,
		c.churnMonth,
		c.partitionDuration,
		c.rowsLoaded,
		c.loadDuration,
		c.validationMismatch,
	)

	return c
}

// RecordCompaniesGenerated は生成された企業数を記録する。
func (c *Collector) RecordCompaniesGenerated(count int) {
	c.companiesGenerated.Add(float64(count))
}

// RecordPartition は1パーティション分のシミュレーション結果を記録する。
func (c *Collector) RecordPartition(companies, sessions, churned int, duration time.Duration) {
	c.sessionsGenerated.Add(float64(sessions))
	c.companiesChurned.Add(float64(churned))
	c.partitionDuration.Observe(duration.Seconds())
}

// RecordChurn は解約が発生した月を記録する。
func (c *Collector) RecordChurn(month int) {
	c.churnMonth.Observe(float64(month))
}

// RecordRowsLoaded はテーブルに投入された行数を記録する。
func (c *Collector) RecordRowsLoaded(table string, rows int) {
	c.rowsLoaded.WithLabelValues(table).Add(float64(rows))
}

// RecordLoad は一括投入の所要時間を記録する。
func (c *Collector) RecordLoad(duration time.Duration) {
	c.loadDuration.Observe(duration.Seconds())
}

// RecordValidationMismatch は行数不一致を記録する。
func (c *Collector) RecordValidationMismatch(table string) {
	c.validationMismatch.WithLabelValues(table).Inc()
}

var _ MetricsCollector = (*Collector)(nil)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile は収集済みのメトリクスをnode_exporterのtextfile形式で書き出す。
// 実行完了後にスクレイプされない一度きりの実行で使う。
func WriteTextfile(gatherer prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
