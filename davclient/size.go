package davclient

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatSize renders b with 1024 based units and at most 2 decimals,
// trailing zeros dropped: 1536 => "1.5 KB", 1048576 => "1 MB".
func FormatSize(b int64) string {
	if b <= 0 {
		return "0 Bytes"
	}
	// floor(log1024(b)) on integers, float log may land just below exact powers
	i := 0
	for unit := int64(1024); i < len(sizeUnits)-1 && b >= unit; unit *= 1024 {
		i++
	}
	v := float64(b) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
