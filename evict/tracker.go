// Package evict ranks resident pages by a bounded usage counter kept in a
// bucketqueue and names the coldest page as the next eviction victim.
//
// Levels 0..Sentinel-1 are usage counts; the sentinel level holds pinned pages,
// which are never chosen as victims.
package evict

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jiverson002/sbma-sub001/bucketqueue"
)

var (
	ErrResident    = errors.New("evict: page already resident")
	ErrNotResident = errors.New("evict: page not resident")
)

// Tracker is safe for concurrent use; one mutex brackets every queue call.
type Tracker struct {
	mu      sync.Mutex
	q       *bucketqueue.Queue
	pages   map[uint64]bucketqueue.Handle
	ceiling int // highest usage level a Touch reaches
}

// New builds a tracker whose usage counters saturate at levels-2.
// levels must be at least 3 so that one usage step exists below the pin level.
func New(levels int, opts ...bucketqueue.Option) (*Tracker, error) {
	if levels < 3 {
		return nil, fmt.Errorf("%w: tracker needs 3, got %d", bucketqueue.ErrInvalidLevels, levels)
	}
	q, err := bucketqueue.New(levels, opts...)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		q:       q,
		pages:   make(map[uint64]bucketqueue.Handle),
		ceiling: levels - 2,
	}, nil
}

// Admit records page as resident with a usage count of zero.
func (t *Tracker) Admit(page uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pages[page]; ok {
		return fmt.Errorf("%w: %d", ErrResident, page)
	}
	h, err := t.q.Insert(page)
	if err != nil {
		return err
	}
	t.pages[page] = h
	return nil
}

// Has reports whether page is resident.
func (t *Tracker) Has(page uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pages[page]
	return ok
}

// Touch bumps the usage count of page by one, saturating at the cap.
// Pinned pages are left alone.
func (t *Tracker) Touch(page uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, level, err := t.lookup(page)
	if err != nil {
		return err
	}
	if level >= t.ceiling {
		return nil
	}
	return t.q.Increment(h)
}

// Age lowers the usage count of every unpinned page above zero by one.
// It is the periodic housekeeping tick and costs O(resident pages).
func (t *Tracker) Age() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, h := range t.pages {
		level, err := t.q.Level(h)
		if err != nil {
			return err
		}
		if level == 0 || level > t.ceiling {
			continue
		}
		if err := t.q.Decrement(h); err != nil {
			return err
		}
	}
	return nil
}

// Pin lifts page to the sentinel level so it is never picked as a victim.
func (t *Tracker) Pin(page uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, level, err := t.lookup(page)
	if err != nil {
		return err
	}
	for ; level < t.q.Sentinel(); level++ {
		if err := t.q.Increment(h); err != nil {
			return err
		}
	}
	return nil
}

// Unpin returns a pinned page to the highest usage level. Unpinned pages are left alone.
func (t *Tracker) Unpin(page uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, level, err := t.lookup(page)
	if err != nil {
		return err
	}
	if level != t.q.Sentinel() {
		return nil
	}
	return t.q.Decrement(h)
}

// Victim names the least used unpinned page without evicting it.
// ok is false when no page is resident or every resident page is pinned.
func (t *Tracker) Victim() (page uint64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, level, tag := t.q.PeekMin()
	if h == bucketqueue.NilHandle || level == t.q.Sentinel() {
		return 0, false
	}
	return tag, true
}

// Hottest names the most used unpinned page.
func (t *Tracker) Hottest() (page uint64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, _, tag := t.q.PeekNearMax()
	if h == bucketqueue.NilHandle {
		return 0, false
	}
	return tag, true
}

// Usage returns the usage count of page; pinned pages report the sentinel level.
func (t *Tracker) Usage(page uint64) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, level, err := t.lookup(page)
	return level, err
}

// Evict forgets page.
func (t *Tracker) Evict(page uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotResident, page)
	}
	if err := t.q.Remove(h); err != nil {
		return err
	}
	delete(t.pages, page)
	return nil
}

// Len returns the number of resident pages.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pages)
}

// Reset forgets every page and keeps the arena for reuse.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.q.Reset()
	clear(t.pages)
}

// Close releases the arena. The tracker must not be used afterwards.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.pages)
	return t.q.Destroy()
}

func (t *Tracker) lookup(page uint64) (bucketqueue.Handle, int, error) {
	h, ok := t.pages[page]
	if !ok {
		return bucketqueue.NilHandle, 0, fmt.Errorf("%w: %d", ErrNotResident, page)
	}
	level, err := t.q.Level(h)
	return h, level, err
}
