package board

// Zobrist keys for board hashing.
// Uses PRNG with fixed seed for reproducibility.
//
// Only piece placement is hashed. The key stands in for a full board
// snapshot in the repetition history, so two positions count as the same
// exactly when their boards match, regardless of side to move or rights.
var zobristPiece [pieceLimit][64]uint64

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			p := NewPiece(pt, c)
			for sq := 0; sq < 64; sq++ {
				zobristPiece[p][sq] = rng.next()
			}
		}
	}
}

// Hash computes the board key from scratch.
func (b *Board) Hash() uint64 {
	var key uint64
	for sq, p := range b {
		key ^= zobristPiece[p][sq]
	}
	return key
}
