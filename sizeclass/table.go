// Package sizeclass maps allocation sizes to bins and keeps free blocks ranked
// by bin in a bucketqueue. The table itself is configuration supplied by the
// caller; nothing here derives class sizes.
package sizeclass

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/sugawarayuuta/sonnet"
)

var (
	ErrEmptyTable     = errors.New("sizeclass: table has no classes")
	ErrZeroSize       = errors.New("sizeclass: class size is zero")
	ErrNotMonotone    = errors.New("sizeclass: class sizes not strictly increasing")
	ErrTooSmall       = errors.New("sizeclass: block smaller than the first class")
	ErrUnknownBlock   = errors.New("sizeclass: block not indexed")
	ErrDuplicateBlock = errors.New("sizeclass: block already indexed")
)

// Table lists the canonical block size of every bin, smallest first.
type Table struct {
	Name  string   `json:"name"`
	Sizes []uint64 `json:"sizes"`
}

// Load decodes a JSON table such as {"name":"small","sizes":[16,32,64]} and validates it.
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read size table: %w", err)
	}
	var t Table
	if err := sonnet.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode size table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that the table is non-empty, has no zero sizes and is
// strictly increasing.
func (t *Table) Validate() error {
	if len(t.Sizes) == 0 {
		return ErrEmptyTable
	}
	for i, s := range t.Sizes {
		if s == 0 {
			return fmt.Errorf("%w: bin %d", ErrZeroSize, i)
		}
		if i > 0 && s <= t.Sizes[i-1] {
			return fmt.Errorf("%w: bin %d (%d) after %d", ErrNotMonotone, i, s, t.Sizes[i-1])
		}
	}
	return nil
}

// Len returns the number of bins.
func (t *Table) Len() int { return len(t.Sizes) }

// Bin returns the smallest bin whose size can hold size bytes.
// ok is false when size exceeds every class.
func (t *Table) Bin(size uint64) (bin int, ok bool) {
	i := sort.Search(len(t.Sizes), func(i int) bool { return t.Sizes[i] >= size })
	return i, i < len(t.Sizes)
}

// Floor returns the largest bin whose size fits inside size bytes, which is the
// bin a free block of that size serves. ok is false below the first class.
func (t *Table) Floor(size uint64) (bin int, ok bool) {
	i := sort.Search(len(t.Sizes), func(i int) bool { return t.Sizes[i] > size })
	return i - 1, i > 0
}

// Size returns the canonical size of bin.
func (t *Table) Size(bin int) (uint64, bool) {
	if bin < 0 || bin >= len(t.Sizes) {
		return 0, false
	}
	return t.Sizes[bin], true
}
