package lexer

import "fmt"

// MinLookahead is the smallest usable buffer: one slot for the token being
// peeked and one for the most recently consumed token.
const MinLookahead = 2

// Buffer is a fixed-capacity ring of tokens. Slots next..next+peeked-1 hold
// tokens scanned but not yet consumed; the slot before next holds the most
// recently consumed token. peeked never reaches the capacity, so a peek can
// never overwrite that slot.
type Buffer struct {
	slots    []Token
	next     int
	peeked   int
	length   int
	consumed int
}

// NewBuffer returns an empty buffer. It panics if capacity < MinLookahead.
func NewBuffer(capacity int) *Buffer {
	if capacity < MinLookahead {
		panic(fmt.Sprintf("lexer: lookahead capacity %d is below the minimum of %d", capacity, MinLookahead))
	}
	return &Buffer{slots: make([]Token, capacity)}
}

// Cap returns the number of slots in the ring.
func (b *Buffer) Cap() int { return len(b.slots) }

// Peeked returns how many tokens are materialized ahead of the cursor.
func (b *Buffer) Peeked() int { return b.peeked }

func (b *Buffer) slot(offset int) int {
	n := len(b.slots)
	return ((b.next+offset)%n + n) % n
}

// push materializes tok after the already peeked tokens.
func (b *Buffer) push(tok Token) {
	if b.peeked+1 >= len(b.slots) {
		panic(fmt.Sprintf("lexer: lookahead of %d tokens exceeds buffer capacity %d", b.peeked+1, len(b.slots)))
	}
	b.slots[b.slot(b.peeked)] = tok
	b.peeked++
	if b.length < len(b.slots) {
		b.length++
	}
}

// at returns the n-th unconsumed token; n must be below Peeked.
func (b *Buffer) at(n int) Token {
	return b.slots[b.slot(n)]
}

// pop consumes the token at the cursor; Peeked must be non-zero.
func (b *Buffer) pop() Token {
	tok := b.slots[b.next]
	b.next = b.slot(1)
	b.peeked--
	b.consumed++
	return tok
}

// Previous returns the most recently consumed token.
func (b *Buffer) Previous() (Token, bool) {
	if b.consumed == 0 {
		return Token{}, false
	}
	return b.slots[b.slot(-1)], true
}

// Last returns the most recently materialized token, consumed or not.
func (b *Buffer) Last() (Token, bool) {
	if b.peeked > 0 {
		return b.slots[b.slot(b.peeked-1)], true
	}
	return b.Previous()
}

// Snapshot is a copy of the ring state for debug dumps.
type Snapshot struct {
	Capacity int     `json:"capacity"`
	Length   int     `json:"length"`
	Next     int     `json:"next"`
	Peeked   int     `json:"peeked"`
	Tokens   []Token `json:"tokens"`
}

// Snapshot copies the filled slots in slot order.
func (b *Buffer) Snapshot() Snapshot {
	tokens := make([]Token, b.length)
	copy(tokens, b.slots[:b.length])
	return Snapshot{
		Capacity: len(b.slots),
		Length:   b.length,
		Next:     b.next,
		Peeked:   b.peeked,
		Tokens:   tokens,
	}
}
