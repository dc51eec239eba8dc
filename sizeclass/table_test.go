package sizeclass

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

func TestLoadTable(t *testing.T) {
	g := NewWithT(t)
	tbl, err := Load(strings.NewReader(`{"name":"small","sizes":[16,32,64,128]}`))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(tbl.Name).To(Equal("small"))
	g.Expect(tbl.Sizes).To(Equal([]uint64{16, 32, 64, 128}))
	g.Expect(tbl.Len()).To(Equal(4))
}

func TestLoadRejectsBadTables(t *testing.T) {
	g := NewWithT(t)
	cases := map[string]error{
		`{"sizes":[]}`:        ErrEmptyTable,
		`{"sizes":[0,8]}`:     ErrZeroSize,
		`{"sizes":[8,8]}`:     ErrNotMonotone,
		`{"sizes":[32,16]}`:   ErrNotMonotone,
		`{"name":"no sizes"}`: ErrEmptyTable,
	}
	for in, want := range cases {
		_, err := Load(strings.NewReader(in))
		g.Expect(err).To(MatchError(want), in)
	}
	_, err := Load(strings.NewReader(`{"sizes":`))
	g.Expect(err).To(HaveOccurred())
}

func TestBinLookup(t *testing.T) {
	g := NewWithT(t)
	tbl := &Table{Sizes: []uint64{16, 32, 64}}

	for _, c := range []struct {
		size uint64
		bin  int
		ok   bool
	}{
		{1, 0, true}, {16, 0, true}, {17, 1, true}, {32, 1, true}, {64, 2, true}, {65, 3, false},
	} {
		bin, ok := tbl.Bin(c.size)
		g.Expect(ok).To(Equal(c.ok), "size %d", c.size)
		if ok {
			g.Expect(bin).To(Equal(c.bin), "size %d", c.size)
		}
	}
}

func TestFloorAndSize(t *testing.T) {
	g := NewWithT(t)
	tbl := &Table{Sizes: []uint64{16, 32, 64}}

	_, ok := tbl.Floor(15)
	g.Expect(ok).To(BeFalse())
	bin, ok := tbl.Floor(16)
	g.Expect(ok).To(BeTrue())
	g.Expect(bin).To(Equal(0))
	bin, _ = tbl.Floor(63)
	g.Expect(bin).To(Equal(1))
	bin, _ = tbl.Floor(1 << 20)
	g.Expect(bin).To(Equal(2))

	size, ok := tbl.Size(1)
	g.Expect(ok).To(BeTrue())
	g.Expect(size).To(BeEquivalentTo(32))
	_, ok = tbl.Size(3)
	g.Expect(ok).To(BeFalse())
	_, ok = tbl.Size(-1)
	g.Expect(ok).To(BeFalse())
}

// Bin is monotone: larger requests never map to smaller bins.
func TestBinMonotone(t *testing.T) {
	g := NewWithT(t)
	tbl := &Table{Sizes: []uint64{8, 24, 40, 100, 4096}}
	prev := 0
	for size := uint64(1); size <= 4096; size++ {
		bin, ok := tbl.Bin(size)
		g.Expect(ok).To(BeTrue())
		g.Expect(bin).To(BeNumerically(">=", prev))
		g.Expect(tbl.Sizes[bin]).To(BeNumerically(">=", size))
		prev = bin
	}
}
