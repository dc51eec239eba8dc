// Package bucketqueue is a discrete priority queue over a small, bounded range of
// integer levels. Elements enter at level 0 and move one level at a time; the
// lowest occupied level is always available in O(1) through a doubly linked
// chain of non-empty buckets. Node storage comes from an arena of fixed-size
// blocks, so handles stay valid while the arena grows.
//
// A Queue is not safe for concurrent use. Callers that share one must bracket
// every call with their own lock.
package bucketqueue

import (
	"errors"

	"github.com/jiverson002/sbma-sub001/constants"
	"github.com/jiverson002/sbma-sub001/debug"
)

// none marks an absent bucket link.
const none int32 = -1

// bucket is one level. prev/next link it into the active chain, which holds
// exactly the non-empty buckets in ascending level order.
type bucket struct {
	prev, next int32
	head       Handle
}

// Queue is the bucket queue. The zero value is not usable; call New.
type Queue struct {
	head, tail int32 // lowest and highest active buckets
	size       int
	epoch      uint32
	destroyed  bool

	buckets []bucket
	arena   arena
	fatal   func(error)
}

// New builds a queue with levels buckets (0..levels-1). The top bucket is the
// saturation sentinel that PeekNearMax looks past.
func New(levels int, opts ...Option) (*Queue, error) {
	if levels < constants.MinLevels || levels > 1<<31-1 {
		return nil, ErrInvalidLevels
	}
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	a, err := newArena(c)
	if err != nil {
		if c.fatal != nil && errors.Is(err, ErrOutOfMemory) {
			c.fatal(err)
		}
		return nil, err
	}

	q := &Queue{
		head:    none,
		tail:    none,
		buckets: make([]bucket, levels),
		arena:   a,
		fatal:   c.fatal,
	}
	q.clearBuckets()
	return q, nil
}

func (q *Queue) clearBuckets() {
	for i := range q.buckets {
		q.buckets[i] = bucket{prev: none, next: none, head: NilHandle}
	}
	q.head, q.tail = none, none
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// INTERNAL OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// node resolves a handle already known to be live. No checks.
//
//go:nosplit
//go:inline
func (q *Queue) node(h Handle) *node {
	return q.arena.at(h)
}

// lookup validates a caller-supplied handle.
func (q *Queue) lookup(h Handle) (*node, error) {
	if q.destroyed {
		return nil, ErrDestroyed
	}
	if h == NilHandle || h.epoch() != q.epoch {
		return nil, ErrInvalidHandle
	}
	n := q.arena.get(h)
	if n == nil || n.epoch != q.epoch || n.level == removedLevel {
		return nil, ErrInvalidHandle
	}
	return n, nil
}

// pushHead makes h the first node of bucket level. The bucket must already be
// in the active chain.
//
//go:nosplit
//go:inline
func (q *Queue) pushHead(h Handle, n *node, level int32) {
	b := &q.buckets[level]
	n.level = uint32(level)
	n.prev = NilHandle
	n.next = b.head
	if b.head != NilHandle {
		q.node(b.head).prev = h
	}
	b.head = h
}

// unlinkNode removes h from its bucket and drops the bucket from the active
// chain if it became empty.
func (q *Queue) unlinkNode(h Handle, n *node) {
	level := int32(n.level)
	b := &q.buckets[level]
	if b.head == h {
		b.head = n.next
	}
	if n.prev != NilHandle {
		q.node(n.prev).next = n.next
	}
	if n.next != NilHandle {
		q.node(n.next).prev = n.prev
	}
	n.next, n.prev = NilHandle, NilHandle

	if b.head == NilHandle {
		q.unlinkBucket(level)
	}
}

// unlinkBucket splices bucket k out of the active chain, moving head or tail
// to the neighbouring active bucket when k was at either end.
func (q *Queue) unlinkBucket(k int32) {
	b := &q.buckets[k]
	if b.prev != none {
		q.buckets[b.prev].next = b.next
	} else {
		q.head = b.next
	}
	if b.next != none {
		q.buckets[b.next].prev = b.prev
	} else {
		q.tail = b.prev
	}
	b.prev, b.next = none, none
}

// linkAfter splices inactive bucket nb directly after active bucket k.
func (q *Queue) linkAfter(k, nb int32) {
	b, x := &q.buckets[k], &q.buckets[nb]
	x.prev = k
	x.next = b.next
	if b.next != none {
		q.buckets[b.next].prev = nb
	} else {
		q.tail = nb
	}
	b.next = nb
}

// linkBefore splices inactive bucket nb directly before active bucket k.
func (q *Queue) linkBefore(k, nb int32) {
	b, x := &q.buckets[k], &q.buckets[nb]
	x.next = k
	x.prev = b.prev
	if b.prev != none {
		q.buckets[b.prev].next = nb
	} else {
		q.head = nb
	}
	b.prev = nb
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PUBLIC OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Insert stores tag at level 0 and returns its handle. Within a level the most
// recently arrived element is seen first.
//
// When the arena cannot grow, the fatal handler runs first; if it returns, the
// error wraps ErrOutOfMemory and the queue is unchanged.
func (q *Queue) Insert(tag uint64) (Handle, error) {
	if q.destroyed {
		return NilHandle, ErrDestroyed
	}
	h, n, err := q.arena.alloc(q.epoch)
	if err != nil {
		if q.fatal != nil {
			q.fatal(err)
		}
		return NilHandle, err
	}
	n.tag = tag

	// Level 0 is the lowest possible level, so it can only be missing from the front.
	if q.head != 0 {
		b0 := &q.buckets[0]
		b0.prev = none
		b0.next = q.head
		if q.head != none {
			q.buckets[q.head].prev = 0
		} else {
			q.tail = 0
		}
		q.head = 0
	}
	q.pushHead(h, n, 0)
	q.size++
	return h, nil
}

// Remove unlinks h. Its slot is not reused until Reset.
func (q *Queue) Remove(h Handle) error {
	n, err := q.lookup(h)
	if err != nil {
		return err
	}
	q.unlinkNode(h, n)
	n.level = removedLevel
	q.size--
	return nil
}

// Increment moves h from level k to k+1. It fails with ErrLevelOutOfRange at
// the top level and leaves the queue untouched.
func (q *Queue) Increment(h Handle) error {
	n, err := q.lookup(h)
	if err != nil {
		return err
	}
	k := int32(n.level)
	nb := k + 1
	if int(nb) >= len(q.buckets) {
		return ErrLevelOutOfRange
	}

	// k is active because h sits in it, so k+1 is active iff it follows k.
	if q.buckets[k].next != nb {
		q.linkAfter(k, nb)
	}
	q.unlinkNode(h, n)
	q.pushHead(h, n, nb)
	return nil
}

// Decrement moves h from level k to k-1. It fails with ErrLevelOutOfRange at
// level 0 and leaves the queue untouched.
func (q *Queue) Decrement(h Handle) error {
	n, err := q.lookup(h)
	if err != nil {
		return err
	}
	k := int32(n.level)
	if k == 0 {
		return ErrLevelOutOfRange
	}
	nb := k - 1

	if q.buckets[k].prev != nb {
		q.linkBefore(k, nb)
	}
	q.unlinkNode(h, n)
	q.pushHead(h, n, nb)
	return nil
}

// PeekMin returns the first element of the lowest occupied level without
// removing it, or NilHandle when the queue is empty.
func (q *Queue) PeekMin() (Handle, int, uint64) {
	return q.peekBucket(q.head)
}

// PeekMax returns the first element of the highest occupied level, the
// sentinel included, or NilHandle when the queue is empty.
func (q *Queue) PeekMax() (Handle, int, uint64) {
	return q.peekBucket(q.tail)
}

// PeekNearMax returns the first element of the highest occupied level below
// the sentinel, or NilHandle when only the sentinel (or nothing) is occupied.
func (q *Queue) PeekNearMax() (Handle, int, uint64) {
	return q.peekBucket(q.nearMax())
}

// PeekLevel returns the first element of level, or NilHandle when that level is
// empty or out of range.
func (q *Queue) PeekLevel(level int) (Handle, uint64) {
	if level < 0 || level >= len(q.buckets) {
		return NilHandle, 0
	}
	h := q.buckets[level].head
	if h == NilHandle {
		return NilHandle, 0
	}
	return h, q.node(h).tag
}

// Next returns the element after h in h's level, or NilHandle at the end of the
// level. Together with PeekLevel it walks one level in bucket order.
func (q *Queue) Next(h Handle) (Handle, uint64, error) {
	n, err := q.lookup(h)
	if err != nil {
		return NilHandle, 0, err
	}
	if n.next == NilHandle {
		return NilHandle, 0, nil
	}
	return n.next, q.node(n.next).tag, nil
}

//go:nosplit
//go:inline
func (q *Queue) nearMax() int32 {
	t := q.tail
	if t != none && int(t) == len(q.buckets)-1 {
		t = q.buckets[t].prev
	}
	return t
}

//go:nosplit
//go:inline
func (q *Queue) peekBucket(k int32) (Handle, int, uint64) {
	if k == none {
		return NilHandle, 0, 0
	}
	h := q.buckets[k].head
	n := q.node(h)
	return h, int(n.level), n.tag
}

// Empty reports whether no level is occupied.
func (q *Queue) Empty() bool { return q.head == none }

// NearMaxEmpty reports whether no level below the sentinel is occupied.
func (q *Queue) NearMaxEmpty() bool { return q.nearMax() == none }

// Level returns the current level of h.
func (q *Queue) Level(h Handle) (int, error) {
	n, err := q.lookup(h)
	if err != nil {
		return 0, err
	}
	return int(n.level), nil
}

// Tag returns the payload stored with h.
func (q *Queue) Tag(h Handle) (uint64, error) {
	n, err := q.lookup(h)
	if err != nil {
		return 0, err
	}
	return n.tag, nil
}

// Size returns the number of live elements.
func (q *Queue) Size() int { return q.size }

// Levels returns the configured level count, sentinel included.
func (q *Queue) Levels() int { return len(q.buckets) }

// Sentinel returns the saturation level, Levels()-1.
func (q *Queue) Sentinel() int { return len(q.buckets) - 1 }

// Blocks reports arena blocks in use since the last Reset and blocks mapped overall.
func (q *Queue) Blocks() (inUse, mapped int) {
	return q.arena.inUse, len(q.arena.dir)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Reset empties the queue and rewinds the arena to its first block. Mapped
// blocks are kept for the next population cycle. Handles issued before the
// reset become invalid.
func (q *Queue) Reset() {
	if q.destroyed {
		return
	}
	q.clearBuckets()
	q.size = 0
	q.epoch++
	q.arena.reset()
}

// Destroy unmaps every arena block. The queue is unusable afterwards; a second
// call is a no-op.
func (q *Queue) Destroy() error {
	if q.destroyed {
		return nil
	}
	err := q.arena.destroy()
	if err != nil {
		debug.DropError("bucketqueue destroy", err)
	}
	q.destroyed = true
	q.buckets = nil
	q.head, q.tail = none, none
	q.size = 0
	return err
}
