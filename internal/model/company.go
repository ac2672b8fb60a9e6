package model

import "time"

// Company はサブスクリプションを契約している企業を表す。
// 生成後に変更されることはない。
type Company struct {
	ID        string
	Name      string
	Tier      Tier
	CreatedAt time.Time
}

// Session は企業のサービス利用セッションを表す。
type Session struct {
	ID              string
	CompanyID       string
	CreatedAt       time.Time
	DurationMinutes float64
}
