package bucketqueue

import "fmt"

// Check walks the whole structure and reports the first broken invariant,
// wrapped in ErrCorrupt. It is O(levels + size) and meant for tests and
// debugging sessions, not hot paths.
func (q *Queue) Check() error {
	if q.destroyed {
		return nil
	}
	inChain := make([]bool, len(q.buckets))
	count := 0
	last := none

	if (q.head == none) != (q.tail == none) {
		return fmt.Errorf("%w: head=%d tail=%d", ErrCorrupt, q.head, q.tail)
	}
	for k := q.head; k != none; k = q.buckets[k].next {
		if int(k) >= len(q.buckets) || inChain[k] {
			return fmt.Errorf("%w: chain revisits or overruns at level %d", ErrCorrupt, k)
		}
		inChain[k] = true
		b := &q.buckets[k]
		if b.prev != last {
			return fmt.Errorf("%w: level %d prev=%d, want %d", ErrCorrupt, k, b.prev, last)
		}
		if last != none && k <= last {
			return fmt.Errorf("%w: chain not ascending at %d after %d", ErrCorrupt, k, last)
		}
		if b.head == NilHandle {
			return fmt.Errorf("%w: empty level %d in active chain", ErrCorrupt, k)
		}
		prev := NilHandle
		for h := b.head; h != NilHandle; h = q.node(h).next {
			n := q.arena.get(h)
			if n == nil || n.level == removedLevel {
				return fmt.Errorf("%w: dead node %#x in level %d", ErrCorrupt, uint64(h), k)
			}
			if h.epoch() != q.epoch || n.epoch != q.epoch {
				return fmt.Errorf("%w: node %#x from epoch %d linked in epoch %d", ErrCorrupt, uint64(h), n.epoch, q.epoch)
			}
			if int32(n.level) != k {
				return fmt.Errorf("%w: node %#x at level %d claims level %d", ErrCorrupt, uint64(h), k, n.level)
			}
			if n.prev != prev {
				return fmt.Errorf("%w: node %#x prev link broken", ErrCorrupt, uint64(h))
			}
			prev = h
			if count++; count > q.size {
				return fmt.Errorf("%w: more nodes linked than size %d", ErrCorrupt, q.size)
			}
		}
		last = k
	}
	if q.tail != last {
		return fmt.Errorf("%w: tail=%d, last active level=%d", ErrCorrupt, q.tail, last)
	}
	if count != q.size {
		return fmt.Errorf("%w: %d nodes linked, size %d", ErrCorrupt, count, q.size)
	}
	for k := range q.buckets {
		b := &q.buckets[k]
		if !inChain[k] && (b.head != NilHandle || b.prev != none || b.next != none) {
			return fmt.Errorf("%w: level %d outside chain is not cleared", ErrCorrupt, k)
		}
	}
	return nil
}
