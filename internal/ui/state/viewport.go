package state

// Viewport tracks the first visible row of a scrolling list.
type Viewport struct {
	Offset int
}

// Reset scrolls back to the top.
func (v *Viewport) Reset() { v.Offset = 0 }

// EnsureVisible adjusts the offset so cursor stays within a window of
// maxVisible rows over total rows.
func (v *Viewport) EnsureVisible(cursor, total, maxVisible int) {
	if total == 0 || maxVisible <= 0 {
		v.Offset = 0
		return
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	maxOffset := total - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.Offset > maxOffset {
		v.Offset = maxOffset
	}
	if v.Offset < 0 {
		v.Offset = 0
	}
	if cursor < v.Offset {
		v.Offset = cursor
	}
	upper := v.Offset + maxVisible - 1
	if cursor > upper {
		v.Offset = cursor - maxVisible + 1
		if v.Offset < 0 {
			v.Offset = 0
		}
		if v.Offset > maxOffset {
			v.Offset = maxOffset
		}
	}
}

// Window returns the half-open row range currently visible.
func (v *Viewport) Window(total, maxVisible int) (int, int) {
	if maxVisible <= 0 || maxVisible >= total {
		return 0, total
	}
	start := v.Offset
	if start < 0 {
		start = 0
	}
	if start > total-maxVisible {
		start = total - maxVisible
	}
	return start, start + maxVisible
}
