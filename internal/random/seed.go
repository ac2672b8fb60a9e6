// Package random はシード付きの決定的な乱数ストリームを提供する。
//
// 同じシードとストリーム番号からは常に同じ乱数列とUUID列が得られるため、
// 生成したデータセットをシードだけで再現できる。
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed はcrypto/randを使ってシードを生成する。
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Stream はシード付きの乱数ストリーム。
// *rand.Rand のメソッドに加えて io.Reader を実装し、UUID生成にも使える。
type Stream struct {
	*rand.Rand
	src *rand.ChaCha8
}

// NewStream はシードとストリーム番号から独立した乱数ストリームを生成する。
// ストリーム番号が異なれば、同じシードでも異なる乱数列になる。
func NewStream(seed, stream uint64) *Stream {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], stream)
	src := rand.NewChaCha8(key)
	return &Stream{Rand: rand.New(src), src: src}
}

// Read はストリームから乱数バイト列を読み出す。
func (s *Stream) Read(p []byte) (int, error) {
	return s.src.Read(p)
}
