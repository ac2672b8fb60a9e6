package generator

import (
	"fmt"
	"math/rand/v2"
)

// NameGenerator は企業の表示名を生成するインターフェース。
type NameGenerator interface {
	CompanyName() string
}

// WordListNames は単語リストを組み合わせて企業名を生成する。
type WordListNames struct {
	rng *rand.Rand
}

// NewWordListNames は指定した乱数源を使うWordListNamesを生成する。
func NewWordListNames(rng *rand.Rand) *WordListNames {
	return &WordListNames{rng: rng}
}

// CompanyName は "Keller Group" や "Bright Harbor Labs" のような企業名を返す。
func (n *WordListNames) CompanyName() string {
	switch n.rng.IntN(4) {
	case 0:
		return fmt.Sprintf("%s %s", n.pick(surnames), n.pick(companySuffixes))
	case 1:
		return fmt.Sprintf("%s-%s", n.pick(surnames), n.pick(surnames))
	case 2:
		return fmt.Sprintf("%s, %s and %s", n.pick(surnames), n.pick(surnames), n.pick(surnames))
	default:
		return fmt.Sprintf("%s %s %s", n.pick(adjectives), n.pick(nouns), n.pick(companySuffixes))
	}
}

func (n *WordListNames) pick(words []string) string {
	return words[n.rng.IntN(len(words))]
}

var surnames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas", "Taylor",
	"Moore", "Jackson", "Martin", "Lee", "Thompson", "White", "Harris", "Clark",
	"Lewis", "Robinson", "Walker", "Young", "Allen", "King", "Wright", "Scott",
	"Nguyen", "Hill", "Flores", "Green", "Adams", "Nelson", "Baker", "Hall",
	"Keller", "Tanaka", "Sato", "Novak", "Kowalski", "Fischer", "Weber", "Rossi",
}

var companySuffixes = []string{
	"Inc", "LLC", "Group", "Ltd", "PLC", "and Sons", "Labs", "Systems",
	"Partners", "Holdings", "Technologies", "Solutions",
}

var adjectives = []string{
	"Bright", "Blue", "Silver", "Rapid", "Quiet", "Northern", "Golden", "Clear",
	"Bold", "Prime", "Vivid", "Summit", "Green", "Iron", "Open", "True",
}

var nouns = []string{
	"Harbor", "Peak", "Field", "River", "Stone", "Bridge", "Signal", "Forge",
	"Cloud", "Grid", "Path", "Orbit", "Ledger", "Beacon", "Anchor", "Pixel",
}
