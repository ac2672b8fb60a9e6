// Package pipeline は生成、シミュレーション、投入、検証の各段階を順に実行する。
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/saasseed/internal/model"
	"github.com/hitoshi/saasseed/internal/repository"
	"github.com/hitoshi/saasseed/internal/simulation"
	"github.com/hitoshi/saasseed/internal/validation"
)

// CompanySource は企業の母集団を生成するインターフェース。
type CompanySource interface {
	Generate(n int, epoch time.Time) ([]model.Company, error)
}

// SessionSimulator は企業ごとのセッション履歴をシミュレーションするインターフェース。
type SessionSimulator interface {
	Run(ctx context.Context, companies []model.Company) (*simulation.Result, error)
}

// Validator は投入後の行数を検証するインターフェース。
type Validator interface {
	Validate(ctx context.Context, expected []validation.TableCount) error
}

// GenerationRecorder は企業生成数を記録するインターフェース。
type GenerationRecorder interface {
	RecordCompaniesGenerated(count int)
}

// Options は1回の実行のパラメータ。
type Options struct {
	CompanyCount int
	Epoch        time.Time
	Seed         uint64
}

// Deps はパイプラインの各段階の実装。Recorderはnilでもよい。
type Deps struct {
	Generator CompanySource
	Simulator SessionSimulator
	Loader    repository.BulkLoader
	Validator Validator
	Recorder  GenerationRecorder
	Logger    *slog.Logger
}

// Report は実行結果の集計。
type Report struct {
	Seed      uint64
	Companies int
	Sessions  int
	Churned   int

	GenerateDuration time.Duration
	SimulateDuration time.Duration
	LoadDuration     time.Duration
	ValidateDuration time.Duration
}

// Total は全段階の所要時間の合計を返す。
func (r *Report) Total() time.Duration {
	return r.GenerateDuration + r.SimulateDuration + r.LoadDuration + r.ValidateDuration
}

// Pipeline はシードデータの生成から検証までを実行する。
type Pipeline struct {
	opts Options
	deps Deps
}

// New はPipelineを生成する。
func New(opts Options, deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Pipeline{opts: opts, deps: deps}
}

// Run は generate → simulate → load → validate を順に実行する。
// いずれかの段階が失敗した時点で中断し、Reportは返さない。
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	logger := p.deps.Logger
	report := &Report{Seed: p.opts.Seed}

	logger.Info("シード処理を開始します",
		slog.Int("company_count", p.opts.CompanyCount),
		slog.Time("epoch", p.opts.Epoch),
		slog.Uint64("seed", p.opts.Seed),
	)

	logger.Info("企業データの生成を開始します")
	start := time.Now()
	companies, err := p.deps.Generator.Generate(p.opts.CompanyCount, p.opts.Epoch)
	if err != nil {
		return nil, fmt.Errorf("企業データの生成に失敗しました: %w", err)
	}
	report.GenerateDuration = time.Since(start)
	report.Companies = len(companies)
	if p.deps.Recorder != nil {
		p.deps.Recorder.RecordCompaniesGenerated(len(companies))
	}
	logger.Info("企業データの生成が完了しました",
		slog.Int("companies", len(companies)),
		slog.Duration("duration", report.GenerateDuration),
	)

	logger.Info("セッションのシミュレーションを開始します")
	start = time.Now()
	result, err := p.deps.Simulator.Run(ctx, companies)
	if err != nil {
		return nil, err
	}
	report.SimulateDuration = time.Since(start)
	report.Sessions = len(result.Sessions)
	report.Churned = result.Churned()
	logger.Info("セッションのシミュレーションが完了しました",
		slog.Int("sessions", report.Sessions),
		slog.Int("churned", report.Churned),
		slog.Duration("duration", report.SimulateDuration),
	)

	data := repository.SeedData{
		Subscriptions: model.Catalog(),
		Companies:     companies,
		Sessions:      result.Sessions,
	}

	logger.Info("データベースへの投入を開始します")
	start = time.Now()
	if err := p.deps.Loader.Load(ctx, data); err != nil {
		return nil, fmt.Errorf("データの投入に失敗しました: %w", err)
	}
	report.LoadDuration = time.Since(start)
	logger.Info("データベースへの投入が完了しました", slog.Duration("duration", report.LoadDuration))

	logger.Info("行数の検証を開始します")
	start = time.Now()
	if err := p.deps.Validator.Validate(ctx, validation.ExpectedCounts(data)); err != nil {
		return nil, err
	}
	report.ValidateDuration = time.Since(start)

	logger.Info("シード処理が完了しました",
		slog.Int("companies", report.Companies),
		slog.Int("sessions", report.Sessions),
		slog.Int("churned", report.Churned),
		slog.Duration("total", report.Total()),
	)
	return report, nil
}
