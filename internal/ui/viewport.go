package ui

// Viewport tracks selection and scroll position over a list of total items
// of which capacity fit on screen. After every method call:
//
//	0 <= selected < max(total, 1)
//	0 <= offset <= max(0, total-capacity)
//	offset <= selected < offset+capacity
//
// An empty list is one virtual slot with selected == 0 and no scroll.
type Viewport struct {
	total    int
	capacity int
	selected int
	offset   int
}

// SetDimensions records the current item count and visible row count and
// clamps the selection and scroll position into range. Capacities below one
// are treated as one.
func (v *Viewport) SetDimensions(total, capacity int) {
	if total < 0 {
		total = 0
	}
	if capacity < 1 {
		capacity = 1
	}
	v.total = total
	v.capacity = capacity
	v.selected = clamp(v.selected, 0, v.last())
	v.offset = clamp(v.offset, 0, v.maxOffset())
	v.follow()
}

// MoveSelection moves the selection by delta rows and scrolls just enough to
// keep it visible.
func (v *Viewport) MoveSelection(delta int) {
	v.selected = clamp(v.selected+delta, 0, v.last())
	v.follow()
}

// PageMove scrolls one page in the direction of sign. The selection moves by
// the same amount, so it keeps its row on screen until the list end stops
// the scroll, at which point it runs on to the first or last item. Unlike
// MoveSelection(sign*capacity), paging from the top of 50 items in 10 rows
// lands on (offset 10, selected 10), not (offset 1, selected 10).
func (v *Viewport) PageMove(sign int) {
	switch {
	case sign > 0:
		sign = 1
	case sign < 0:
		sign = -1
	default:
		return
	}
	step := sign * v.cap()
	v.offset = clamp(v.offset+step, 0, v.maxOffset())
	v.selected = clamp(v.selected+step, 0, v.last())
	v.follow()
}

// JumpToStart selects the first item.
func (v *Viewport) JumpToStart() {
	v.selected = 0
	v.follow()
}

// JumpToEnd selects the last item.
func (v *Viewport) JumpToEnd() {
	v.selected = v.last()
	v.follow()
}

// Reset selects the first item and scrolls to the top.
func (v *Viewport) Reset() {
	v.selected = 0
	v.offset = 0
}

// Selected returns the selected index.
func (v *Viewport) Selected() int { return v.selected }

// Offset returns the index of the first visible item.
func (v *Viewport) Offset() int { return v.offset }

// Total returns the item count from the last SetDimensions.
func (v *Viewport) Total() int { return v.total }

// Capacity returns the visible row count from the last SetDimensions.
func (v *Viewport) Capacity() int { return v.cap() }

// Window returns the half-open range of item indexes currently visible.
func (v *Viewport) Window() (start, end int) {
	start = v.offset
	end = start + v.cap()
	if end > v.total {
		end = v.total
	}
	if start > end {
		start = end
	}
	return start, end
}

// Above and Below count items scrolled out of view.
func (v *Viewport) Above() int { return v.offset }

func (v *Viewport) Below() int {
	_, end := v.Window()
	return v.total - end
}

func (v *Viewport) cap() int {
	if v.capacity < 1 {
		return 1
	}
	return v.capacity
}

func (v *Viewport) last() int {
	if v.total <= 0 {
		return 0
	}
	return v.total - 1
}

func (v *Viewport) maxOffset() int {
	if m := v.total - v.cap(); m > 0 {
		return m
	}
	return 0
}

// follow scrolls the minimum distance needed to show the selection.
func (v *Viewport) follow() {
	if v.selected < v.offset {
		v.offset = v.selected
	} else if v.selected >= v.offset+v.cap() {
		v.offset = v.selected - v.cap() + 1
	}
	v.offset = clamp(v.offset, 0, v.maxOffset())
}
