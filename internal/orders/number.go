package orders

import (
	"crypto/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// NumberSource produces human-readable order numbers.
type NumberSource interface {
	Next() string
}

const (
	base36        = "0123456789abcdefghijklmnopqrstuvwxyz"
	seqWidth      = 3
	randWidth     = 4
	seqModulus    = 36 * 36 * 36
	DefaultPrefix = "MS"
)

// NumberGenerator renders PREFIX-<unix ms>-<seq><random>, upper-cased.
// The sequence keeps numbers minted by one process distinct within the
// same millisecond; the random part separates processes. The database
// unique constraint stays the final arbiter.
type NumberGenerator struct {
	prefix string
	seq    atomic.Uint32
	now    func() time.Time
}

func NewNumberGenerator(prefix string) *NumberGenerator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &NumberGenerator{prefix: prefix, now: time.Now}
}

func (g *NumberGenerator) Next() string {
	seq := g.seq.Add(1) % seqModulus

	var b strings.Builder
	b.WriteString(g.prefix)
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(g.now().UnixMilli(), 10))
	b.WriteByte('-')

	s := strconv.FormatUint(uint64(seq), 36)
	b.WriteString(strings.Repeat("0", seqWidth-len(s)))
	b.WriteString(s)

	var buf [randWidth]byte
	_, _ = rand.Read(buf[:])
	for _, c := range buf {
		b.WriteByte(base36[int(c)%len(base36)])
	}
	return strings.ToUpper(b.String())
}
