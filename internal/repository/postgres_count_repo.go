package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/doug-martin/goqu/v9"

	"github.com/hitoshi/saasseed/internal/database"
)

// PostgresCountRepo はPostgreSQLのテーブル行数を取得するリポジトリ。
type PostgresCountRepo struct {
	db *sql.DB
}

// NewPostgresCountRepo はPostgresCountRepoを生成する。
func NewPostgresCountRepo(db *sql.DB) *PostgresCountRepo {
	return &PostgresCountRepo{db: db}
}

// CountRows は指定テーブルの行数を返す。シード対象外のテーブル名はエラーになる。
func (r *PostgresCountRepo) CountRows(ctx context.Context, table string) (int64, error) {
	query, err := countSQL(table)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%sの行数の取得に失敗しました: %w", table, err)
	}
	return count, nil
}

func countSQL(table string) (string, error) {
	if !slices.Contains(database.Tables(), table) {
		return "", fmt.Errorf("未知のテーブルです: %q", table)
	}

	query, _, err := goqu.Dialect(dialectPostgres).
		From(table).
		Select(goqu.COUNT(goqu.Star())).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("COUNT文の生成に失敗しました: %w", err)
	}
	return query, nil
}

var _ RowCounter = (*PostgresCountRepo)(nil)
