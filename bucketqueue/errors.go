package bucketqueue

import "errors"

var (
	ErrOutOfMemory      = errors.New("bucketqueue: cannot obtain arena block")
	ErrLevelOutOfRange  = errors.New("bucketqueue: level transition out of range")
	ErrInvalidHandle    = errors.New("bucketqueue: invalid handle")
	ErrInvalidLevels    = errors.New("bucketqueue: level count below minimum")
	ErrInvalidBlockSize = errors.New("bucketqueue: block size cannot hold a node")
	ErrDestroyed        = errors.New("bucketqueue: queue destroyed")
	ErrCorrupt          = errors.New("bucketqueue: invariant violated")
)
