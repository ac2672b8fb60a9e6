package simulation

import "github.com/hitoshi/saasseed/internal/model"

// Partition は企業を最大n個の連続した互いに素なグループに分割する。
// 各グループの大きさの差は最大1で、先頭の len(companies)%n 個のグループが1社多くなる。
// グループ内の順序は元の順序を保つ。nが企業数より大きい場合は企業数個に分割する。
// 返すスライスは元のスライスを共有するため、呼び出し側は変更してはならない。
func Partition(companies []model.Company, n int) [][]model.Company {
	if len(companies) == 0 {
		return nil
	}
	n = min(max(n, 1), len(companies))

	size, extra := len(companies)/n, len(companies)%n
	parts := make([][]model.Company, 0, n)
	offset := 0
	for i := 0; i < n; i++ {
		l := size
		if i < extra {
			l++
		}
		parts = append(parts, companies[offset:offset+l:offset+l])
		offset += l
	}
	return parts
}
