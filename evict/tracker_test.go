package evict

import (
	"sync"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/jiverson002/sbma-sub001/bucketqueue"
)

func newTracker(t *testing.T, levels int) *Tracker {
	t.Helper()
	tr, err := New(levels)
	if err != nil {
		t.Fatalf("New(%d): %v", levels, err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestVictimIsLeastUsed(t *testing.T) {
	g := NewWithT(t)
	tr := newTracker(t, 5)
	for p := uint64(1); p <= 3; p++ {
		g.Expect(tr.Admit(p)).To(Succeed())
	}
	g.Expect(tr.Touch(3)).To(Succeed())
	g.Expect(tr.Touch(2)).To(Succeed())
	g.Expect(tr.Touch(2)).To(Succeed())

	victim, ok := tr.Victim()
	g.Expect(ok).To(BeTrue())
	g.Expect(victim).To(BeEquivalentTo(1))

	hot, ok := tr.Hottest()
	g.Expect(ok).To(BeTrue())
	g.Expect(hot).To(BeEquivalentTo(2))
}

func TestTouchSaturatesBelowPinLevel(t *testing.T) {
	g := NewWithT(t)
	tr := newTracker(t, 4) // usage 0..2, pin level 3
	g.Expect(tr.Admit(7)).To(Succeed())
	for i := 0; i < 10; i++ {
		g.Expect(tr.Touch(7)).To(Succeed())
	}
	g.Expect(tr.Usage(7)).To(Equal(2))
}

func TestAgeDecaysCounters(t *testing.T) {
	g := NewWithT(t)
	tr := newTracker(t, 6)
	g.Expect(tr.Admit(1)).To(Succeed())
	g.Expect(tr.Admit(2)).To(Succeed())
	for i := 0; i < 3; i++ {
		g.Expect(tr.Touch(1)).To(Succeed())
	}
	g.Expect(tr.Pin(2)).To(Succeed())

	g.Expect(tr.Age()).To(Succeed())
	g.Expect(tr.Usage(1)).To(Equal(2))
	g.Expect(tr.Usage(2)).To(Equal(5))

	for i := 0; i < 5; i++ {
		g.Expect(tr.Age()).To(Succeed())
	}
	g.Expect(tr.Usage(1)).To(Equal(0))
}

func TestPinnedPagesAreNeverVictims(t *testing.T) {
	g := NewWithT(t)
	tr := newTracker(t, 4)
	g.Expect(tr.Admit(1)).To(Succeed())
	g.Expect(tr.Pin(1)).To(Succeed())
	g.Expect(tr.Touch(1)).To(Succeed())
	g.Expect(tr.Usage(1)).To(Equal(3))

	_, ok := tr.Victim()
	g.Expect(ok).To(BeFalse())
	_, ok = tr.Hottest()
	g.Expect(ok).To(BeFalse())

	g.Expect(tr.Unpin(1)).To(Succeed())
	g.Expect(tr.Usage(1)).To(Equal(2))
	victim, ok := tr.Victim()
	g.Expect(ok).To(BeTrue())
	g.Expect(victim).To(BeEquivalentTo(1))
	g.Expect(tr.Unpin(1)).To(Succeed())
	g.Expect(tr.Usage(1)).To(Equal(2))
}

func TestResidencyErrors(t *testing.T) {
	g := NewWithT(t)
	tr := newTracker(t, 4)
	g.Expect(tr.Admit(1)).To(Succeed())
	g.Expect(tr.Admit(1)).To(MatchError(ErrResident))
	g.Expect(tr.Touch(9)).To(MatchError(ErrNotResident))
	g.Expect(tr.Pin(9)).To(MatchError(ErrNotResident))
	g.Expect(tr.Unpin(9)).To(MatchError(ErrNotResident))
	g.Expect(tr.Evict(9)).To(MatchError(ErrNotResident))
	_, err := tr.Usage(9)
	g.Expect(err).To(MatchError(ErrNotResident))

	g.Expect(tr.Evict(1)).To(Succeed())
	g.Expect(tr.Has(1)).To(BeFalse())
	g.Expect(tr.Len()).To(BeZero())
	_, ok := tr.Victim()
	g.Expect(ok).To(BeFalse())

	_, err = New(2)
	g.Expect(err).To(MatchError(bucketqueue.ErrInvalidLevels))
}

func TestResetKeepsTrackerUsable(t *testing.T) {
	g := NewWithT(t)
	tr := newTracker(t, 4)
	for p := uint64(0); p < 1000; p++ {
		g.Expect(tr.Admit(p)).To(Succeed())
	}
	tr.Reset()
	g.Expect(tr.Len()).To(BeZero())
	g.Expect(tr.Admit(5)).To(Succeed())
	victim, ok := tr.Victim()
	g.Expect(ok).To(BeTrue())
	g.Expect(victim).To(BeEquivalentTo(5))
}

func TestConcurrentCallers(t *testing.T) {
	g := NewWithT(t)
	tr := newTracker(t, 8)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for i := uint64(0); i < 200; i++ {
				p := base*1000 + i
				if err := tr.Admit(p); err != nil {
					t.Error(err)
					return
				}
				_ = tr.Touch(p)
				if i%3 == 0 {
					_ = tr.Evict(p)
				}
			}
		}(uint64(w))
	}
	wg.Wait()
	g.Expect(tr.Len()).To(Equal(8 * (200 - 67)))
}
