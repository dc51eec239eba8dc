//go:build !unix

package bucketqueue

import "github.com/jiverson002/sbma-sub001/constants"

func pageSize() int {
	return constants.FallbackPageSize
}
