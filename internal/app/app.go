// Package app はコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/saasseed/internal/config"
	"github.com/hitoshi/saasseed/internal/database"
	"github.com/hitoshi/saasseed/internal/generator"
	"github.com/hitoshi/saasseed/internal/handler"
	"github.com/hitoshi/saasseed/internal/logger"
	"github.com/hitoshi/saasseed/internal/metrics"
	"github.com/hitoshi/saasseed/internal/pipeline"
	"github.com/hitoshi/saasseed/internal/random"
	"github.com/hitoshi/saasseed/internal/repository"
	"github.com/hitoshi/saasseed/internal/simulation"
	"github.com/hitoshi/saasseed/internal/validation"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再セットアップする
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで実行する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		return runHealthcheck(os.Getenv("METRICS_ADDR"))
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL())),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandReset:
		return runReset(cfg)
	default:
		_, err := runSeed(ctx, cfg, slog.Default())
		return err
	}
}

// runSeed はシード処理全体を実行する。
// DB接続、スキーマの初期化、生成、投入、検証の順に進み、いずれかが失敗した時点で中断する。
func runSeed(ctx context.Context, cfg *config.Config, log *slog.Logger) (*pipeline.Report, error) {
	// 1. DB接続
	db, err := database.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, err
	}
	defer db.Close()

	log.Info("database connection established")

	// 2. メトリクスとステータスサーバー
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	if cfg.MetricsAddr != "" {
		shutdown := startStatusServer(cfg.MetricsAddr, &handler.RouterDeps{
			HealthChecker: db,
			Gatherer:      reg,
			Logger:        log,
		}, log)
		defer shutdown()
	}
	if cfg.MetricsTextfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(reg, cfg.MetricsTextfile); err != nil {
				log.Error("メトリクスの書き出しに失敗しました", slog.String("error", err.Error()))
			}
		}()
	}

	// 3. スキーマの初期化
	if err := database.ResetSchema(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("schema reset failed: %w", err)
	}
	log.Info("schema reset completed")

	// 4. シードの決定
	seed, err := resolveSeed(cfg.Seed)
	if err != nil {
		return nil, err
	}

	// 5. パイプラインの構築
	workers := cfg.Workers()
	log.Info("pipeline configured",
		slog.Uint64("seed", seed),
		slog.Int("workers", workers),
		slog.Int("batch_size", cfg.LoadBatchSize),
	)

	companyStream := random.NewStream(seed, 0)
	p := pipeline.New(pipeline.Options{
		CompanyCount: cfg.CompanyCount,
		Epoch:        cfg.Epoch,
		Seed:         seed,
	}, pipeline.Deps{
		Generator: generator.NewCompanyGenerator(
			companyStream.Rand, companyStream, generator.NewWordListNames(companyStream.Rand),
		),
		Simulator: simulation.NewRunner(simulation.SeededSimulators(seed), workers, log, collector),
		Loader: repository.NewPostgresSeedRepo(db,
			repository.WithBatchSize(cfg.LoadBatchSize),
			repository.WithMaxBatchesPerSec(cfg.LoadMaxBatchesPerSec),
			repository.WithLoadRecorder(collector),
			repository.WithLogger(log),
		),
		Validator: validation.NewRowCountValidator(repository.NewPostgresCountRepo(db), log, collector),
		Recorder:  collector,
		Logger:    log,
	})

	report, err := p.Run(ctx)
	if err != nil {
		log.Error("シード処理に失敗しました", slog.String("error", err.Error()))
		return nil, err
	}
	return report, nil
}

// resolveSeed は設定されたシードを返す。0の場合は新しいシードを生成する。
func resolveSeed(configured uint64) (uint64, error) {
	if configured != 0 {
		return configured, nil
	}
	seed, err := random.NewSeed()
	if err != nil {
		return 0, fmt.Errorf("failed to generate seed: %w", err)
	}
	return seed, nil
}

// startStatusServer はステータスサーバーをバックグラウンドで起動し、停止用の関数を返す。
func startStatusServer(addr string, deps *handler.RouterDeps, log *slog.Logger) func() {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("status server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("status server listen error", slog.String("error", err.Error()))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("status server shutdown failed", slog.String("error", err.Error()))
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations")

	if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runReset はシード対象のテーブルを削除して作り直す。
func runReset(cfg *config.Config) error {
	slog.Info("resetting database schema")

	if err := database.ResetSchema(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("schema reset failed: %w", err)
	}

	slog.Info("database schema reset completed")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// ステータスサーバーの /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(addr string) error {
	if addr == "" {
		return errors.New("health check failed: METRICS_ADDR is not set")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("health check failed: invalid METRICS_ADDR %q: %w", addr, err)
	}
	if host == "" {
		host = "localhost"
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + net.JoinHostPort(host, port) + "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
