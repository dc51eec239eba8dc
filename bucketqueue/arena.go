package bucketqueue

import (
	"errors"
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/jiverson002/sbma-sub001/constants"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// NODE STORAGE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// node is one arena slot. It holds no Go pointers, so blocks may live in
// memory the garbage collector never scans.
type node struct {
	level uint32 // 4B - current bucket, removedLevel once unlinked for good
	epoch uint32 // 4B - reset generation at issue time
	tag   uint64 // 8B - caller payload
	next  Handle // 8B - next in bucket
	prev  Handle // 8B - previous in bucket
}

var _ [constants.NodeSize - unsafe.Sizeof(node{})]byte
var _ [unsafe.Sizeof(node{}) - constants.NodeSize]byte

// removedLevel marks a slot whose element was removed. New caps levels well below it.
const removedLevel = ^uint32(0)

type block struct {
	mem   []byte
	nodes []node
}

// arena issues node slots from fixed-capacity blocks. Blocks are never moved or
// released before destroy; only the directory slice is reallocated as it grows.
type arena struct {
	dir       []block // every block ever mapped, in mapping order
	inUse     int     // blocks handed out since the last reset
	used      int     // slots issued from dir[inUse-1]
	perBlock  int     // 1 << shift
	shift     uint
	blockSize int
	maxBlocks int // 0 means unbounded
	source    BlockSource
}

func newArena(c *config) (arena, error) {
	perBlock := c.blockSize / constants.NodeSize
	if perBlock < 1 || perBlock > constants.MaxSlotsPerBlock {
		return arena{}, ErrInvalidBlockSize
	}
	shift := uint(bits.Len(uint(perBlock)) - 1)
	a := arena{
		perBlock:  1 << shift,
		shift:     shift,
		blockSize: (1 << shift) * constants.NodeSize,
		source:    c.source,
	}
	if c.growth == Fixed {
		a.maxBlocks = max(c.maxBlocks, 1)
		for len(a.dir) < a.maxBlocks {
			if err := a.grow(); err != nil {
				return arena{}, errors.Join(err, a.destroy())
			}
		}
	}
	return a, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ALLOCATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// alloc hands out the next zeroed slot, stamping it with epoch.
// A new block is mapped only when every previously mapped block is in use.
func (a *arena) alloc(epoch uint32) (Handle, *node, error) {
	if a.inUse == 0 || a.used == a.perBlock {
		if a.inUse == len(a.dir) {
			if err := a.grow(); err != nil {
				return NilHandle, nil, err
			}
		}
		a.inUse++
		a.used = 0
	}
	b, s := a.inUse-1, a.used
	a.used++

	n := &a.dir[b].nodes[s]
	*n = node{epoch: epoch, next: NilHandle, prev: NilHandle}
	return makeHandle(epoch, uint32(b<<a.shift|s)), n, nil
}

// grow maps one block and appends it to the directory, doubling the
// directory's capacity when it is full.
func (a *arena) grow() error {
	if a.maxBlocks > 0 && len(a.dir) >= a.maxBlocks {
		return fmt.Errorf("%w: fixed arena limit of %d blocks reached", ErrOutOfMemory, a.maxBlocks)
	}
	if uint64(len(a.dir)) >= uint64(constants.MaxHandleSlots)>>a.shift {
		return fmt.Errorf("%w: handle space exhausted", ErrOutOfMemory)
	}
	mem, err := a.source.Map(a.blockSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	if len(mem) < a.blockSize {
		_ = a.source.Unmap(mem)
		return fmt.Errorf("%w: short block of %d bytes", ErrOutOfMemory, len(mem))
	}

	if len(a.dir) == cap(a.dir) {
		dir := make([]block, len(a.dir), max(2*cap(a.dir), constants.DirectoryInitCap))
		copy(dir, a.dir)
		a.dir = dir
	}
	a.dir = append(a.dir, block{mem: mem, nodes: nodesOf(mem, a.perBlock)})
	return nil
}

// locate splits a handle's index into block and slot.
//
//go:nosplit
//go:inline
func (a *arena) locate(h Handle) (block, slot int) {
	i := h.index()
	return int(i >> a.shift), int(i & uint32(a.perBlock-1))
}

// at resolves a handle already known to be issued. No checks.
//
//go:nosplit
//go:inline
func (a *arena) at(h Handle) *node {
	b, s := a.locate(h)
	return &a.dir[b].nodes[s]
}

// get resolves h to its slot, or nil if the slot was never issued since the last reset.
//
//go:nosplit
//go:inline
func (a *arena) get(h Handle) *node {
	b, s := a.locate(h)
	if b >= a.inUse || (b == a.inUse-1 && s >= a.used) {
		return nil
	}
	return &a.dir[b].nodes[s]
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// reset rewinds allocation to the first block. Nothing is unmapped.
func (a *arena) reset() {
	a.inUse = 0
	a.used = 0
}

// destroy unmaps every block ever mapped, including ones idle since a reset.
func (a *arena) destroy() error {
	var errs []error
	for i := range a.dir {
		if err := a.source.Unmap(a.dir[i].mem); err != nil {
			errs = append(errs, fmt.Errorf("unmap block %d: %w", i, err))
		}
	}
	a.dir = nil
	a.inUse, a.used = 0, 0
	return errors.Join(errs...)
}

//go:nosplit
//go:inline
func nodesOf(mem []byte, n int) []node {
	return unsafe.Slice((*node)(unsafe.Pointer(unsafe.SliceData(mem))), n)
}

//go:nosplit
//go:inline
func unsafeBytes(words []uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*8)
}
