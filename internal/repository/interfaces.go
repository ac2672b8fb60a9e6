// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/saasseed/internal/model"
)

// SeedData は1回の実行で投入するデータ一式を表す。
type SeedData struct {
	Subscriptions []model.Subscription
	Companies     []model.Company
	Sessions      []model.Session
}

// BulkLoader はシードデータの一括投入インターフェース。
type BulkLoader interface {
	// Load はsubscriptions、companies、sessionsの順で全データを投入する。
	// いずれかの投入に失敗した場合は何もコミットしない。
	Load(ctx context.Context, data SeedData) error
}

// RowCounter はテーブルの行数取得インターフェース。
type RowCounter interface {
	// CountRows は指定テーブルの行数を返す。
	CountRows(ctx context.Context, table string) (int64, error)
}

// LoadRecorder は投入結果を記録するインターフェース。
type LoadRecorder interface {
	RecordRowsLoaded(table string, rows int)
	RecordLoad(d time.Duration)
}
