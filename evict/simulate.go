package evict

import (
	"context"

	"github.com/jiverson002/sbma-sub001/bucketqueue"
	"github.com/jiverson002/sbma-sub001/constants"
)

// Stats summarises one trace replay.
type Stats struct {
	Capacity  int
	Hits      int
	Misses    int
	Evictions int
}

// Simulate replays trace against a cache of capacity pages. A hit touches the
// page; a miss evicts the current victim when full and admits the page. Every
// ageEvery accesses all counters are aged (0 disables aging).
func Simulate(ctx context.Context, trace []uint64, capacity, levels, ageEvery int, opts ...bucketqueue.Option) (Stats, error) {
	st := Stats{Capacity: capacity}
	if capacity < 1 {
		return st, nil
	}
	t, err := New(levels, opts...)
	if err != nil {
		return st, err
	}
	defer t.Close()

	for i, page := range trace {
		if i%constants.SimCancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}
		if ageEvery > 0 && i > 0 && i%ageEvery == 0 {
			if err := t.Age(); err != nil {
				return st, err
			}
		}

		if t.Has(page) {
			st.Hits++
			if err := t.Touch(page); err != nil {
				return st, err
			}
			continue
		}
		st.Misses++
		if t.Len() >= capacity {
			victim, ok := t.Victim()
			if !ok {
				continue
			}
			if err := t.Evict(victim); err != nil {
				return st, err
			}
			st.Evictions++
		}
		if err := t.Admit(page); err != nil {
			return st, err
		}
	}
	return st, nil
}
