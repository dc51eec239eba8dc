package sizeclass

import (
	"fmt"

	"github.com/jiverson002/sbma-sub001/bucketqueue"
)

type freeBlock struct {
	h    bucketqueue.Handle
	size uint64
}

// FreeBins ranks free blocks by the bin they can serve. Level i of the queue
// holds blocks of at least Sizes[i] bytes; blocks larger than the last class
// sit on the sentinel level.
//
// FreeBins is not safe for concurrent use.
type FreeBins struct {
	table  *Table
	q      *bucketqueue.Queue
	blocks map[uint64]freeBlock
}

// NewFreeBins validates t and builds an index with one level per bin plus the sentinel.
func NewFreeBins(t *Table, opts ...bucketqueue.Option) (*FreeBins, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	q, err := bucketqueue.New(t.Len()+1, opts...)
	if err != nil {
		return nil, err
	}
	return &FreeBins{table: t, q: q, blocks: make(map[uint64]freeBlock)}, nil
}

// Add indexes free block id of size bytes.
func (f *FreeBins) Add(id, size uint64) error {
	if _, dup := f.blocks[id]; dup {
		return fmt.Errorf("%w: %d", ErrDuplicateBlock, id)
	}
	level, ok := f.table.Floor(size)
	if !ok {
		return fmt.Errorf("%w: %d bytes", ErrTooSmall, size)
	}
	if size > f.table.Sizes[len(f.table.Sizes)-1] {
		level = f.q.Sentinel()
	}

	h, err := f.q.Insert(id)
	if err != nil {
		return err
	}
	for i := 0; i < level; i++ {
		if err := f.q.Increment(h); err != nil {
			_ = f.q.Remove(h)
			return err
		}
	}
	f.blocks[id] = freeBlock{h: h, size: size}
	return nil
}

// Take removes block id from the index and returns its size.
func (f *FreeBins) Take(id uint64) (uint64, error) {
	b, ok := f.blocks[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBlock, id)
	}
	if err := f.q.Remove(b.h); err != nil {
		return 0, err
	}
	delete(f.blocks, id)
	return b.size, nil
}

func (f *FreeBins) block(h bucketqueue.Handle, id uint64) (uint64, uint64, bool) {
	if h == bucketqueue.NilHandle {
		return 0, 0, false
	}
	return id, f.blocks[id].size, true
}

// Smallest returns a block from the lowest occupied bin.
func (f *FreeBins) Smallest() (id, size uint64, ok bool) {
	h, _, tag := f.q.PeekMin()
	return f.block(h, tag)
}

// Largest returns a block from the highest occupied bin, ignoring oversized blocks.
func (f *FreeBins) Largest() (id, size uint64, ok bool) {
	h, _, tag := f.q.PeekNearMax()
	return f.block(h, tag)
}

// Oversized returns a block larger than every class, if any.
func (f *FreeBins) Oversized() (id, size uint64, ok bool) {
	h, level, tag := f.q.PeekMax()
	if level != f.q.Sentinel() {
		return 0, 0, false
	}
	return f.block(h, tag)
}

// Fit returns a block from the cheapest bin that satisfies a request of size
// bytes, falling back to oversized blocks. Every block in a bin holds at least
// that bin's size, so bins are decided by their head; oversized blocks are
// unordered and get a best-fit walk.
func (f *FreeBins) Fit(size uint64) (id, blockSize uint64, ok bool) {
	start, ok := f.table.Bin(size)
	if !ok {
		start = f.q.Sentinel()
	}
	for level := start; level < f.q.Sentinel(); level++ {
		if h, tag := f.q.PeekLevel(level); h != bucketqueue.NilHandle {
			return f.block(h, tag)
		}
	}
	return f.fitOversized(size)
}

func (f *FreeBins) fitOversized(size uint64) (id, blockSize uint64, ok bool) {
	h, tag := f.q.PeekLevel(f.q.Sentinel())
	for h != bucketqueue.NilHandle {
		if b := f.blocks[tag].size; b >= size && (!ok || b < blockSize) {
			id, blockSize, ok = tag, b, true
		}
		var err error
		if h, tag, err = f.q.Next(h); err != nil {
			return 0, 0, false
		}
	}
	return id, blockSize, ok
}

// Len returns the number of indexed blocks.
func (f *FreeBins) Len() int { return len(f.blocks) }

// Reset forgets every block but keeps the arena mapped for the next pass.
func (f *FreeBins) Reset() {
	f.q.Reset()
	clear(f.blocks)
}

// Close releases the queue's arena.
func (f *FreeBins) Close() error {
	clear(f.blocks)
	return f.q.Destroy()
}
