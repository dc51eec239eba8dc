//go:build unix

package bucketqueue

import "golang.org/x/sys/unix"

// pageSize reports the kernel page size; one arena block spans one page.
func pageSize() int {
	return unix.Getpagesize()
}
