package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/saasseed/internal/model"
	"github.com/hitoshi/saasseed/internal/random"
)

// Recorder はシミュレーション結果のメトリクスを記録するインターフェース。
type Recorder interface {
	RecordPartition(companies, sessions, churned int, duration time.Duration)
	RecordChurn(month int)
}

// SimulatorFactory はパーティションごとのSimulatorを生成する。
// partitionは0始まりのパーティション番号。
type SimulatorFactory func(partition int) *Simulator

// SeededSimulators はシードとパーティション番号から独立した乱数ストリームを持つ
// Simulatorを生成するファクトリを返す。
// ストリーム0は企業生成用に予約しているため、パーティションiにはi+1を割り当てる。
func SeededSimulators(seed uint64) SimulatorFactory {
	return func(partition int) *Simulator {
		s := random.NewStream(seed, uint64(partition)+1)
		return NewSimulator(s, s)
	}
}

// PartitionStats はパーティション1つ分の集計。
type PartitionStats struct {
	Index     int
	Companies int
	Sessions  int
	Churned   int
	Duration  time.Duration
}

// Result はすべてのパーティションをマージした結果。
type Result struct {
	Sessions   []model.Session
	Partitions []PartitionStats
}

// Churned はチャーンした企業の合計数を返す。
func (r *Result) Churned() int {
	total := 0
	for _, p := range r.Partitions {
		total += p.Churned
	}
	return total
}

// Runner は企業の母集団をパーティションに分割し、並列にシミュレーションする。
// ワーカー同士は状態を共有せず、各パーティションの出力は専用のスロットに書き込む。
type Runner struct {
	newSimulator SimulatorFactory
	workers      int
	logger       *slog.Logger
	recorder     Recorder
}

// NewRunner はRunnerの新しいインスタンスを生成する。
// workersが0以下の場合は1を使用する。recorderはnilでもよい。
func NewRunner(newSimulator SimulatorFactory, workers int, logger *slog.Logger, recorder Recorder) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		newSimulator: newSimulator,
		workers:      workers,
		logger:       logger,
		recorder:     recorder,
	}
}

// Run はすべての企業をシミュレーションし、セッションを1つのデータセットにマージする。
// いずれかのワーカーが失敗した場合は残りのワーカーをキャンセルし、
// 部分的な結果は返さずにエラーを返す。
func (r *Runner) Run(ctx context.Context, companies []model.Company) (*Result, error) {
	parts := Partition(companies, r.workers)
	outputs := make([][]model.Session, len(parts))
	stats := make([]PartitionStats, len(parts))

	r.logger.Info("シミュレーションを開始します",
		slog.Int("companies", len(companies)),
		slog.Int("partitions", len(parts)),
		slog.Int("workers", r.workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, part := range parts {
		g.Go(func() error {
			sessions, st, err := r.runPartition(gctx, i, part)
			if err != nil {
				return model.NewWorkerFailureError(i, err)
			}
			outputs[i] = sessions
			stats[i] = st
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error("シミュレーションに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	total := 0
	for _, out := range outputs {
		total += len(out)
	}
	merged := make([]model.Session, 0, total)
	for _, out := range outputs {
		merged = append(merged, out...)
	}

	return &Result{Sessions: merged, Partitions: stats}, nil
}

func (r *Runner) runPartition(ctx context.Context, index int, companies []model.Company) ([]model.Session, PartitionStats, error) {
	start := time.Now()
	sim := r.newSimulator(index)

	var sessions []model.Session
	st := PartitionStats{Index: index, Companies: len(companies)}

	for _, c := range companies {
		if err := ctx.Err(); err != nil {
			return nil, st, fmt.Errorf("パーティション処理が中断されました: %w", err)
		}

		h, err := sim.Simulate(c)
		if err != nil {
			return nil, st, err
		}
		sessions = append(sessions, h.Sessions...)
		if h.State == StateChurned {
			st.Churned++
			if r.recorder != nil {
				r.recorder.RecordChurn(h.ChurnMonth())
			}
		}
	}

	st.Sessions = len(sessions)
	st.Duration = time.Since(start)

	if r.recorder != nil {
		r.recorder.RecordPartition(st.Companies, st.Sessions, st.Churned, st.Duration)
	}

	r.logger.Debug("パーティションのシミュレーションが完了しました",
		slog.Int("partition", index),
		slog.Int("companies", st.Companies),
		slog.Int("sessions", st.Sessions),
		slog.Int("churned", st.Churned),
		slog.Float64("duration_ms", float64(st.Duration.Milliseconds())),
	)

	return sessions, st, nil
}
