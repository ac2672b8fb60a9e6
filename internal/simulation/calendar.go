package simulation

import "time"

// MonthWindow は企業の作成月から数えてmonthIndex番目の暦月の範囲 [start, end) を返す。
// 月の長さは対象の暦月そのものから求めるため、うるう年や年跨ぎも正しく扱う。
// monthIndexが0の場合、開始時刻は企業の作成日時に切り上げる。
func MonthWindow(createdAt time.Time, monthIndex int) (time.Time, time.Time) {
	c := createdAt.UTC()
	start := time.Date(c.Year(), c.Month()+time.Month(monthIndex), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	if monthIndex == 0 {
		start = c
	}
	return start, end
}
