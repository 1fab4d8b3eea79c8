package editor

// IDAllocator hands out block ids. Ids are monotonic and never reused, even
// after the block that held one is deleted or undone away.
type IDAllocator struct {
	next int
}

func NewIDAllocator(start int) *IDAllocator {
	if start < 0 {
		start = 0
	}
	return &IDAllocator{next: start}
}

// Next returns a fresh id.
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (a *IDAllocator) Peek() int { return a.next }

// Observe moves the counter past id so it can never be handed out again.
func (a *IDAllocator) Observe(id int) {
	if id >= a.next {
		a.next = id + 1
	}
}
