package simulation

// history is a fixed-capacity ring of readings; the oldest entry is
// overwritten once it is full.
type history struct {
	buf   []FieldState
	start int
	size  int
}

func newHistory(capacity int) *history {
	return &history{buf: make([]FieldState, capacity)}
}

func (h *history) push(r FieldState) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = r
		h.size++
		return
	}
	h.buf[h.start] = r
	h.start = (h.start + 1) % len(h.buf)
}

// items returns a copy, oldest first.
func (h *history) items() []FieldState {
	out := make([]FieldState, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
