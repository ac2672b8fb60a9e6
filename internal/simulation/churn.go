// Package simulation は企業ごとの利用セッションとチャーンのシミュレーションを提供する。
// 企業の母集団をパーティションに分割し、並列に実行する機能を含む。
package simulation

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/saasseed/internal/model"
)

// HorizonMonths はシミュレーションする月数。
const HorizonMonths = 12

const (
	meanDurationMinutes   = 15.0
	stddevDurationMinutes = 5.0
)

// RandomSource はシミュレーションが使う乱数源。
// *rand.Rand（math/rand/v2）がそのまま満たす。
type RandomSource interface {
	IntN(n int) int
	Int64N(n int64) int64
	Float64() float64
	NormFloat64() float64
}

// State は企業の契約状態を表す。
type State int

const (
	// StateActive は利用中の状態。初期状態。
	StateActive State = iota
	// StateChurned は解約済みの状態。終端状態で、以降セッションは生成されない。
	StateChurned
)

// String は状態名を返す。
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateChurned:
		return "churned"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// History は1社分のシミュレーション結果。
type History struct {
	CompanyID string
	Sessions  []model.Session
	// ActiveMonths はセッションが生成された月数。チャーンした場合はチャーン月と等しい。
	ActiveMonths int
	State        State
}

// ChurnMonth はチャーンした月のインデックスを返す。チャーンしていない場合は-1。
func (h *History) ChurnMonth() int {
	if h.State != StateChurned {
		return -1
	}
	return h.ActiveMonths
}

// Simulator は1社分のセッション履歴をシミュレーションする。
// 乱数源とUUID用のバイト列を1つずつ保持するため、goroutine間で共有してはならない。
type Simulator struct {
	rng RandomSource
	ids io.Reader
}

// NewSimulator はSimulatorを生成する。
func NewSimulator(rng RandomSource, ids io.Reader) *Simulator {
	return &Simulator{rng: rng, ids: ids}
}

// Simulate は企業の作成月から最大HorizonMonthsか月分のセッションを生成する。
// ある月のセッション数が0以下になった時点でチャーンとし、以降の月は生成しない。
func (s *Simulator) Simulate(company model.Company) (*History, error) {
	if !company.Tier.Valid() {
		return nil, fmt.Errorf("企業 %s のプランが不正です: %v", company.ID, company.Tier)
	}

	h := &History{CompanyID: company.ID, State: StateActive}

	for month := 0; month < HorizonMonths; month++ {
		count := s.sessionCount(company.Tier)
		if count <= 0 {
			h.State = StateChurned
			break
		}

		start, end := MonthWindow(company.CreatedAt, month)
		for i := 0; i < count; i++ {
			sess, err := s.newSession(company.ID, start, end)
			if err != nil {
				return nil, fmt.Errorf("企業 %s の %d か月目のセッション生成に失敗しました: %w", company.ID, month, err)
			}
			h.Sessions = append(h.Sessions, sess)
		}
		h.ActiveMonths++
	}

	return h, nil
}

// sessionCount はプランの基準値に符号付きの揺らぎを加えた月間セッション数を返す。
// 結果が負になる場合もあり、呼び出し側は0以下をチャーンとして扱う。
func (s *Simulator) sessionCount(tier model.Tier) int {
	p := tier.Params()
	sign := -1
	if s.rng.IntN(2) == 1 {
		sign = 1
	}
	return p.BaseSessions + sign*s.rng.IntN(p.PerturbationSpan)
}

func (s *Simulator) newSession(companyID string, start, end time.Time) (model.Session, error) {
	id, err := uuid.NewRandomFromReader(s.ids)
	if err != nil {
		return model.Session{}, err
	}

	var offset time.Duration
	if span := int64(end.Sub(start) / time.Second); span > 0 {
		offset = time.Duration(s.rng.Int64N(span)) * time.Second
	}

	return model.Session{
		ID:              id.String(),
		CompanyID:       companyID,
		CreatedAt:       start.Add(offset),
		DurationMinutes: math.Abs(s.rng.NormFloat64()*stddevDurationMinutes + meanDurationMinutes),
	}, nil
}
