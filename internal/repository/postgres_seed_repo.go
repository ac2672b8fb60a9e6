package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect登録
	"github.com/lib/pq"
	"golang.org/x/time/rate"

	"github.com/hitoshi/saasseed/internal/model"
)

const dialectPostgres = "postgres"

// カラム定義
var (
	subscriptionColumns = []any{"sub_id", "sub_price"}
	companyColumns      = []string{"company_id", "company_name", "company_size", "company_created_at"}
	sessionColumns      = []string{"session_id", "session_company_id", "session_created_at", "session_duration"}
)

// PostgresSeedRepo はPostgreSQLへシードデータを投入するリポジトリ。
// companiesとsessionsはCOPYでバッチごとに書き込む。
type PostgresSeedRepo struct {
	db        *sql.DB
	batchSize int
	limiter   *rate.Limiter
	recorder  LoadRecorder
	logger    *slog.Logger
}

// SeedRepoOption はPostgresSeedRepoのオプション。
type SeedRepoOption func(*PostgresSeedRepo)

// WithBatchSize は1回のCOPYで送る行数を設定する。0以下は無視する。
func WithBatchSize(n int) SeedRepoOption {
	return func(r *PostgresSeedRepo) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithMaxBatchesPerSec は1秒あたりのバッチ数の上限を設定する。0以下は無制限。
func WithMaxBatchesPerSec(perSec float64) SeedRepoOption {
	return func(r *PostgresSeedRepo) {
		if perSec > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

// WithLoadRecorder は投入結果の記録先を設定する。
func WithLoadRecorder(rec LoadRecorder) SeedRepoOption {
	return func(r *PostgresSeedRepo) {
		r.recorder = rec
	}
}

// WithLogger はロガーを設定する。
func WithLogger(logger *slog.Logger) SeedRepoOption {
	return func(r *PostgresSeedRepo) {
		r.logger = logger
	}
}

// NewPostgresSeedRepo はPostgresSeedRepoを生成する。
func NewPostgresSeedRepo(db *sql.DB, opts ...SeedRepoOption) *PostgresSeedRepo {
	r := &PostgresSeedRepo{
		db:        db,
		batchSize: 1000,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load は全データを単一トランザクションで投入する。
// 外部キーの参照先から順にsubscriptions、companies、sessionsを書き込む。
func (r *PostgresSeedRepo) Load(ctx context.Context, data SeedData) (err error) {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("ロールバックに失敗しました", slog.String("error", rbErr.Error()))
			}
		}
	}()

	if err = r.insertSubscriptions(ctx, tx, data.Subscriptions); err != nil {
		return err
	}
	if err = r.copyRows(ctx, tx, "companies", companyColumns, len(data.Companies), func(i int) []any {
		return companyRow(data.Companies[i])
	}); err != nil {
		return err
	}
	if err = r.copyRows(ctx, tx, "sessions", sessionColumns, len(data.Sessions), func(i int) []any {
		return sessionRow(data.Sessions[i])
	}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	if r.recorder != nil {
		r.recorder.RecordLoad(time.Since(start))
	}
	return nil
}

func (r *PostgresSeedRepo) insertSubscriptions(ctx context.Context, tx *sql.Tx, subs []model.Subscription) error {
	if len(subs) == 0 {
		return nil
	}

	query, args, err := subscriptionInsertSQL(subs)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("subscriptionsの投入に失敗しました: %w", err)
	}

	r.recordRows("subscriptions", len(subs))
	return nil
}

// copyRows はn行をbatchSizeごとのCOPY文で書き込む。
func (r *PostgresSeedRepo) copyRows(ctx context.Context, tx *sql.Tx, table string, columns []string, n int, row func(int) []any) error {
	for _, b := range batches(n, r.batchSize) {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%sの投入待機が中断されました: %w", table, err)
			}
		}

		if err := copyBatch(ctx, tx, table, columns, b, row); err != nil {
			return err
		}

		r.recordRows(table, b.end-b.start)
		r.logger.Debug("バッチを投入しました",
			slog.String("table", table),
			slog.Int("from", b.start),
			slog.Int("to", b.end),
		)
	}
	return nil
}

func copyBatch(ctx context.Context, tx *sql.Tx, table string, columns []string, b batch, row func(int) []any) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("%sのCOPY準備に失敗しました: %w", table, err)
	}
	defer stmt.Close()

	for i := b.start; i < b.end; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return fmt.Errorf("%sの行の書き込みに失敗しました: %w", table, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("%sのCOPYに失敗しました: %w", table, err)
	}
	return nil
}

func (r *PostgresSeedRepo) recordRows(table string, n int) {
	if r.recorder != nil {
		r.recorder.RecordRowsLoaded(table, n)
	}
}

// batch は[start, end)の行範囲を表す。
type batch struct {
	start, end int
}

// batches はn行をsize行ずつの範囲に分割する。
func batches(n, size int) []batch {
	if n <= 0 || size <= 0 {
		return nil
	}
	out := make([]batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		out = append(out, batch{start: start, end: min(start+size, n)})
	}
	return out
}

func subscriptionInsertSQL(subs []model.Subscription) (string, []any, error) {
	rows := make([][]any, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, []any{s.ID, s.Price})
	}

	query, args, err := goqu.Dialect(dialectPostgres).
		Insert("subscriptions").
		Cols(subscriptionColumns...).
		Vals(rows...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("subscriptionsのINSERT文の生成に失敗しました: %w", err)
	}
	return query, args, nil
}

func companyRow(c model.Company) []any {
	return []any{c.ID, c.Name, c.Tier.String(), c.CreatedAt.UTC()}
}

func sessionRow(s model.Session) []any {
	return []any{s.ID, s.CompanyID, s.CreatedAt.UTC(), s.DurationMinutes}
}

var _ BulkLoader = (*PostgresSeedRepo)(nil)
