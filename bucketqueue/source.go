package bucketqueue

import (
	"github.com/edsrzf/mmap-go"
)

// BlockSource supplies and reclaims the fixed-size byte regions that back arena blocks.
// Regions must be zeroed, at least 8-byte aligned, and must not move while mapped.
type BlockSource interface {
	Map(size int) ([]byte, error)
	Unmap(block []byte) error
}

// MmapSource maps anonymous private memory straight from the OS.
// The regions live outside the Go heap and are page aligned.
type MmapSource struct{}

// Map returns a fresh anonymous RDWR mapping of size bytes.
func (MmapSource) Map(size int) ([]byte, error) {
	m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Unmap releases a region obtained from Map.
func (MmapSource) Unmap(block []byte) error {
	m := mmap.MMap(block)
	return m.Unmap()
}

// HeapSource backs blocks with ordinary Go allocations, for platforms
// without anonymous mappings and for tests that count mapping calls.
type HeapSource struct{}

func (HeapSource) Map(size int) ([]byte, error) {
	// []uint64 keeps the region 8-byte aligned.
	words := make([]uint64, (size+7)/8)
	return unsafeBytes(words)[:size], nil
}

func (HeapSource) Unmap([]byte) error { return nil }
