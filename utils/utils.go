package utils

import (
	"syscall"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// S2b exposes the bytes of a string without copying. The result must not be written.
//
//go:nosplit
//go:inline
func S2b(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting
///////////////////////////////////////////////////////////////////////////////

// Itoa formats a signed integer in base 10 using a stack buffer.
// Only the final string conversion allocates.
//
//go:nosplit
//go:inline
func Itoa(n int) string {
	var buf [20]byte
	i := len(buf)
	u := uint64(n)
	if n < 0 {
		u = uint64(-n)
	}
	for u >= 10 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	i--
	buf[i] = byte('0' + u)
	if n < 0 {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Utoa is Itoa for unsigned 64-bit values (tags, page ids).
//
//go:nosplit
//go:inline
func Utoa(u uint64) string {
	var buf [20]byte
	i := len(buf)
	for u >= 10 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	i--
	buf[i] = byte('0' + u)
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Raw Output
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg to stderr (fd 2) with a single write syscall.
// No formatting and no allocation; short writes are dropped.
//
//go:nosplit
//go:inline
func PrintWarning(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = syscall.Write(2, S2b(msg))
}
