package bucketqueue

// Handle addresses one arena slot. Layout, high to low:
//
//	epoch:32 | index:32
//
// The epoch is the queue's reset generation at issue time, so handles issued
// before a Reset are rejected instead of aliasing re-issued slots. The index
// counts slots across the whole arena; the arena splits it into block and slot
// with a shift, which is why blocks hold a power-of-two number of nodes.
type Handle uint64

// NilHandle is never issued; peeks return it for "no element".
const NilHandle Handle = ^Handle(0)

const indexBits = 32

//go:nosplit
//go:inline
func makeHandle(epoch, index uint32) Handle {
	return Handle(epoch)<<indexBits | Handle(index)
}

//go:nosplit
//go:inline
func (h Handle) index() uint32 { return uint32(h) }

//go:nosplit
//go:inline
func (h Handle) epoch() uint32 { return uint32(h >> indexBits) }
