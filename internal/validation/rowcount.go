// Package validation は投入後のデータ件数検証を提供する。
package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/saasseed/internal/model"
	"github.com/hitoshi/saasseed/internal/repository"
)

// TableCount はテーブルと生成済み（メモリ上）の行数の組を表す。
type TableCount struct {
	Table    string
	Expected int64
}

// MismatchRecorder は不一致を記録するインターフェース。
type MismatchRecorder interface {
	RecordValidationMismatch(table string)
}

// RowCountValidator はデータベースの行数が生成件数と一致するか検証する。
type RowCountValidator struct {
	counter  repository.RowCounter
	recorder MismatchRecorder
	logger   *slog.Logger
}

// NewRowCountValidator はRowCountValidatorを生成する。recorderはnilでもよい。
func NewRowCountValidator(counter repository.RowCounter, logger *slog.Logger, recorder MismatchRecorder) *RowCountValidator {
	return &RowCountValidator{
		counter:  counter,
		recorder: recorder,
		logger:   logger,
	}
}

// Validate は指定順にテーブルの行数を取得し、最初に見つかった不一致を返す。
func (v *RowCountValidator) Validate(ctx context.Context, expected []TableCount) error {
	for _, tc := range expected {
		persisted, err := v.counter.CountRows(ctx, tc.Table)
		if err != nil {
			return fmt.Errorf("行数の検証に失敗しました: %w", err)
		}

		if persisted != tc.Expected {
			if v.recorder != nil {
				v.recorder.RecordValidationMismatch(tc.Table)
			}
			v.logger.Error("行数が一致しません",
				slog.String("table", tc.Table),
				slog.Int64("persisted", persisted),
				slog.Int64("in_memory", tc.Expected),
			)
			return model.NewValidationMismatchError(tc.Table, tc.Expected, persisted)
		}

		v.logger.Info("行数が一致しました",
			slog.String("table", tc.Table),
			slog.Int64("rows", persisted),
		)
	}
	return nil
}

// ExpectedCounts は投入データから検証対象の行数を組み立てる。
// companies、sessions、subscriptionsの順で検証する。
func ExpectedCounts(data repository.SeedData) []TableCount {
	return []TableCount{
		{Table: "companies", Expected: int64(len(data.Companies))},
		{Table: "sessions", Expected: int64(len(data.Sessions))},
		{Table: "subscriptions", Expected: int64(len(data.Subscriptions))},
	}
}
