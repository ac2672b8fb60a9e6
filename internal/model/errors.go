// Package model はドメインモデルを定義する。
package model

import "fmt"

// PipelineError はシード処理全体を中断させる致命的エラーを表す。
// どのステージで失敗したかと原因となったエラーを保持する。
type PipelineError struct {
	Code    string // エラーコード
	Stage   string // 失敗したステージ: connect, simulate, validate
	Message string // エラーメッセージ
	Err     error  // 原因となったエラー（存在しない場合はnil）

	// ValidationMismatch の場合のみ設定される
	Table     string
	InMemory  int64
	Persisted int64
}

// Error はerrorインターフェースを実装する。
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は原因となったエラーを返す。
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// 定義済みエラーコード
const (
	ErrCodeConnection         = "CONNECTION_FAILED"
	ErrCodeWorkerFailure      = "WORKER_FAILED"
	ErrCodeValidationMismatch = "VALIDATION_MISMATCH"
)

// NewConnectionError はデータベース接続失敗エラーを生成する。
func NewConnectionError(err error) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeConnection,
		Stage:   "connect",
		Message: "データベースに接続できません",
		Err:     err,
	}
}

// NewWorkerFailureError はパーティションのシミュレーション失敗エラーを生成する。
func NewWorkerFailureError(partition int, err error) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeWorkerFailure,
		Stage:   "simulate",
		Message: fmt.Sprintf("パーティション %d のシミュレーションに失敗しました", partition),
		Err:     err,
	}
}

// NewValidationMismatchError は行数不一致エラーを生成する。
func NewValidationMismatchError(table string, inMemory, persisted int64) *PipelineError {
	return &PipelineError{
		Code:  ErrCodeValidationMismatch,
		Stage: "validate",
		Message: fmt.Sprintf("テーブル %q の行数が一致しません: データベース=%d, 生成=%d",
			table, persisted, inMemory),
		Table:     table,
		InMemory:  inMemory,
		Persisted: persisted,
	}
}
