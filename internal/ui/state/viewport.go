package state

// Viewport tracks which slice of a list is on screen. The cursor itself
// lives elsewhere; the viewport only follows it.
type Viewport struct {
	Offset int
}

// EnsureVisible adjusts the offset so cursor stays within the maxVisible rows
// shown out of total. maxVisible <= 0 means everything is shown.
func (v *Viewport) EnsureVisible(cursor, total, maxVisible int) {
	if total == 0 || maxVisible <= 0 {
		v.Offset = 0
		return
	}
	cursor = clamp(cursor, 0, total-1)
	maxOffset := max(total-maxVisible, 0)
	v.Offset = clamp(v.Offset, 0, maxOffset)
	if cursor < v.Offset {
		v.Offset = cursor
	}
	if upper := v.Offset + maxVisible - 1; cursor > upper {
		v.Offset = clamp(cursor-maxVisible+1, 0, maxOffset)
	}
}

// Bounds returns the half-open range of rows to render.
func (v *Viewport) Bounds(total, maxVisible int) (start, end int) {
	if maxVisible <= 0 || total <= maxVisible {
		return 0, total
	}
	start = clamp(v.Offset, 0, total-maxVisible)
	return start, start + maxVisible
}

// PageSize returns how many rows a page movement covers.
func PageSize(total, maxVisible int) int {
	if total == 0 {
		return 0
	}
	size := maxVisible
	if size <= 0 || size > total {
		size = total
	}
	return max(size, 1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
