// bucketqueue_helpers_test.go — shared helpers for bucketqueue tests
package bucketqueue

import (
	"errors"
	"testing"

	"github.com/jiverson002/sbma-sub001/constants"
)

// smallBlock holds four nodes, so growth happens after every fourth insert.
const smallBlock = 4 * constants.NodeSize

// newQueue builds a queue that is destroyed when the test ends.
func newQueue(t testing.TB, levels int, opts ...Option) *Queue {
	t.Helper()
	q, err := New(levels, opts...)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", levels, err)
	}
	t.Cleanup(func() {
		if err := q.Destroy(); err != nil {
			t.Errorf("Destroy failed: %v", err)
		}
	})
	return q
}

func insertOrFatal(t testing.TB, q *Queue, tag uint64) Handle {
	t.Helper()
	h, err := q.Insert(tag)
	if err != nil {
		t.Fatalf("Insert(%d) failed: %v", tag, err)
	}
	return h
}

func incOrFatal(t testing.TB, q *Queue, h Handle, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		if err := q.Increment(h); err != nil {
			t.Fatalf("Increment(%#x) failed: %v", uint64(h), err)
		}
	}
}

func decOrFatal(t testing.TB, q *Queue, h Handle, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		if err := q.Decrement(h); err != nil {
			t.Fatalf("Decrement(%#x) failed: %v", uint64(h), err)
		}
	}
}

// ─── tiny assertion helpers ────────────────────────────────────────────────────

func expectError(t testing.TB, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("Expected error %v; got %v", want, err)
	}
}

func expectLevel(t testing.TB, q *Queue, h Handle, want int) {
	t.Helper()
	got, err := q.Level(h)
	if err != nil {
		t.Fatalf("Level(%#x) failed: %v", uint64(h), err)
	}
	if got != want {
		t.Fatalf("Unexpected level: got %d, want %d", got, want)
	}
}

func expectTag(t testing.TB, q *Queue, h Handle, want uint64) {
	t.Helper()
	got, err := q.Tag(h)
	if err != nil {
		t.Fatalf("Tag(%#x) failed: %v", uint64(h), err)
	}
	if got != want {
		t.Fatalf("Unexpected tag: got %d, want %d", got, want)
	}
}

func expectPeekMin(t testing.TB, q *Queue, want Handle) {
	t.Helper()
	if got, _, _ := q.PeekMin(); got != want {
		t.Fatalf("PeekMin mismatch: got %#x, want %#x", uint64(got), uint64(want))
	}
}

func expectNearMax(t testing.TB, q *Queue, want Handle) {
	t.Helper()
	if got, _, _ := q.PeekNearMax(); got != want {
		t.Fatalf("PeekNearMax mismatch: got %#x, want %#x", uint64(got), uint64(want))
	}
}

func expectEmpty(t testing.TB, q *Queue) {
	t.Helper()
	if !q.Empty() || q.Size() != 0 {
		t.Fatalf("Expected empty queue; got size=%d, empty=%v", q.Size(), q.Empty())
	}
}

func expectSize(t testing.TB, q *Queue, want int) {
	t.Helper()
	if q.Size() != want {
		t.Fatalf("Expected size=%d; got %d", want, q.Size())
	}
}

func expectConsistent(t testing.TB, q *Queue) {
	t.Helper()
	if err := q.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

// ─── block sources ─────────────────────────────────────────────────────────────

// countingSource wraps HeapSource, counts calls and fails Map once failAt maps succeeded.
type countingSource struct {
	maps, unmaps int
	failAt       int // 0 = never fail
	unmapErr     error
}

var errNoPages = errors.New("no pages left")

func (c *countingSource) Map(size int) ([]byte, error) {
	if c.failAt > 0 && c.maps >= c.failAt {
		return nil, errNoPages
	}
	c.maps++
	return HeapSource{}.Map(size)
}

func (c *countingSource) Unmap(b []byte) error {
	c.unmaps++
	return c.unmapErr
}
