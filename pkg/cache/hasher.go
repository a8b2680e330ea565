package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"bellman/pkg/domain"
)

// GraphHash вычисляет хеш графа для ключа кэша.
//
// Порядок узлов и рёбер входит в хеш: он задаёт порядок обхода и разрешение
// равенств, а значит и трассу. Метки, координаты и роли не влияют на решение
// и в хеш не входят.
func GraphHash(g *domain.Graph) string {
	if g == nil {
		return ""
	}

	h := sha256.New()
	writeInt(h, int64(len(g.Nodes)))
	for _, n := range g.Nodes {
		writeString(h, n.ID)
	}

	writeInt(h, int64(len(g.Edges)))
	for _, e := range g.Edges {
		writeString(h, e.ID)
		writeString(h, e.Source)
		writeString(h, e.Target)
		writeInt(h, e.Weight)
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// строки пишутся с длиной, чтобы "ab"+"c" не совпало с "a"+"bc"
func writeString(h hash.Hash, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

// BuildSolveKey строит ключ кэша для результата решения
func BuildSolveKey(graphHash, method, sourceID, targetID string) string {
	return fmt.Sprintf("solve:%s:%s:%s", method, graphHash, ShortHash([]byte(sourceID+"\x00"+targetID)))
}

// GraphPattern - паттерн всех ключей решений одного графа
func GraphPattern(graphHash string) string {
	return fmt.Sprintf("solve:*:%s:*", graphHash)
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
