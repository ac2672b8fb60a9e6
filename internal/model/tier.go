// Package model はドメインモデルを定義する。
package model

import "fmt"

// Tier はサブスクリプションのプランを表す閉じた列挙型。
type Tier int

const (
	// TierSmall は小規模向けプラン。
	TierSmall Tier = iota
	// TierLarge は大規模向けプラン。
	TierLarge
)

// TierParams はプランごとのシミュレーション・料金パラメータ。
type TierParams struct {
	ID               string  // subscriptions.sub_id に格納される識別子
	Price            int     // 月額料金
	BaseSessions     int     // 1か月あたりの基準セッション数
	PerturbationSpan int     // 揺らぎの大きさの上限（この値は含まない）
	Weight           float64 // 企業生成時の抽選確率
}

var tierParams = map[Tier]TierParams{
	TierSmall: {ID: "small", Price: 19, BaseSessions: 5, PerturbationSpan: 6, Weight: 0.7},
	TierLarge: {ID: "large", Price: 99, BaseSessions: 10, PerturbationSpan: 11, Weight: 0.3},
}

// Tiers はすべてのプランを定義順で返す。
func Tiers() []Tier {
	return []Tier{TierSmall, TierLarge}
}

// Params はプランのパラメータを返す。
func (t Tier) Params() TierParams {
	return tierParams[t]
}

// String はプランの識別子（"small" / "large"）を返す。
func (t Tier) String() string {
	if p, ok := tierParams[t]; ok {
		return p.ID
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Valid はプランが定義済みかどうかを返す。
func (t Tier) Valid() bool {
	_, ok := tierParams[t]
	return ok
}

// Subscription は subscriptions テーブルの1行を表す。
type Subscription struct {
	ID    string
	Price int
}

// Catalog は固定のプラン一覧を返す。
// 呼び出しごとに新しいスライスを返すため、呼び出し側で変更しても影響しない。
func Catalog() []Subscription {
	tiers := Tiers()
	subs := make([]Subscription, 0, len(tiers))
	for _, t := range tiers {
		p := t.Params()
		subs = append(subs, Subscription{ID: p.ID, Price: p.Price})
	}
	return subs
}
