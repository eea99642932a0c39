package state

// Base marks where a buffer's user-written prompt ends and the generated
// completion begins. Token deletion never goes below Count.
type Base struct {
	Text   string
	Tokens []int
}

// Count returns the number of base tokens.
func (b Base) Count() int {
	return len(b.Tokens)
}

// Split divides tokens into the base part and the completion. A buffer that
// has shrunk below its base is treated as all base.
func (b Base) Split(n int) (base, completion int) {
	base = min(b.Count(), n)
	return base, n - base
}

// Bases keeps one Base per prompt buffer, mirroring buffer insertion and
// removal.
type Bases struct {
	items []Base
}

// NewBases starts with a single buffer.
func NewBases(first Base) *Bases {
	return &Bases{items: []Base{first}}
}

// Len reports the number of tracked buffers.
func (b *Bases) Len() int {
	return len(b.items)
}

// At returns the base for buffer i, or the zero Base when out of range.
func (b *Bases) At(i int) Base {
	if i < 0 || i >= len(b.items) {
		return Base{}
	}
	return b.items[i]
}

// Set replaces the base for buffer i.
func (b *Bases) Set(i int, base Base) {
	if i < 0 || i >= len(b.items) {
		return
	}
	b.items[i] = base
}

// Insert adds base at index i, shifting later buffers.
func (b *Bases) Insert(i int, base Base) {
	i = clamp(i, 0, len(b.items))
	b.items = append(b.items, Base{})
	copy(b.items[i+1:], b.items[i:])
	b.items[i] = base
}

// Remove drops the base at index i.
func (b *Bases) Remove(i int) {
	if i < 0 || i >= len(b.items) {
		return
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
}
