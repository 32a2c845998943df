package utils

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ContentChecksum is the xxhash64 of data as 16 hex chars.
func ContentChecksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
