package ledbridge

import "time"

// backoff produces a doubling retry schedule with a ceiling. Used while
// waiting for the wheel to appear or come back after a disconnect.
type backoff struct {
	min, max time.Duration
	next     time.Duration
}

func newBackoff(min, max time.Duration) *backoff {
	return &backoff{min: min, max: max}
}

func (b *backoff) Next() time.Duration {
	if b.next == 0 {
		b.next = b.min
	}
	d := b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	return d
}

func (b *backoff) Reset() {
	b.next = 0
}
