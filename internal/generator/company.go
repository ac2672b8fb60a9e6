// Package generator は企業データの生成を提供する。
package generator

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/saasseed/internal/model"
)

// CompanyGenerator は企業の母集団を生成する。
// 乱数源とUUID用のバイト列を注入することで、シードから同じデータセットを再現できる。
type CompanyGenerator struct {
	rng   *rand.Rand
	ids   io.Reader
	names NameGenerator
}

// NewCompanyGenerator はCompanyGeneratorを生成する。
// idsはUUIDの元になるバイト列で、通常はrngと同じシード付きストリームを渡す。
func NewCompanyGenerator(rng *rand.Rand, ids io.Reader, names NameGenerator) *CompanyGenerator {
	return &CompanyGenerator{rng: rng, ids: ids, names: names}
}

// Generate はn社分の企業を生成する。
// 作成日時はepochからepochの月末までの一様乱数（秒単位）、
// プランはモデルに定義された重み（small 70% / large 30%）で抽選する。
func (g *CompanyGenerator) Generate(n int, epoch time.Time) ([]model.Company, error) {
	if n < 0 {
		return nil, fmt.Errorf("企業数が負の値です: %d", n)
	}

	start, end := FirstMonthWindow(epoch)
	span := max(int64(end.Sub(start)/time.Second), 1)

	companies := make([]model.Company, 0, n)
	for i := 0; i < n; i++ {
		id, err := uuid.NewRandomFromReader(g.ids)
		if err != nil {
			return nil, fmt.Errorf("企業IDの生成に失敗しました: %w", err)
		}

		companies = append(companies, model.Company{
			ID:        id.String(),
			Name:      g.names.CompanyName(),
			Tier:      g.drawTier(),
			CreatedAt: start.Add(time.Duration(g.rng.Int64N(span)) * time.Second),
		})
	}

	return companies, nil
}

// drawTier は重み付きカテゴリ分布からプランを1つ選ぶ。
func (g *CompanyGenerator) drawTier() model.Tier {
	x := g.rng.Float64()
	tiers := model.Tiers()
	var acc float64
	for _, t := range tiers {
		acc += t.Params().Weight
		if x < acc {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// FirstMonthWindow は企業の作成日時の範囲 [epoch, epochの翌月1日) を返す。
// タイムゾーンはUTCに正規化する。
func FirstMonthWindow(epoch time.Time) (time.Time, time.Time) {
	start := epoch.UTC()
	end := time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}
