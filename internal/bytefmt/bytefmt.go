// Package bytefmt renders byte counts as short human-readable strings.
package bytefmt

import (
	"math"
	"strconv"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// Bytes formats b with two decimal places of precision, e.g. "1.5 KB".
func Bytes(b int64) string {
	return BytesPrecision(b, 2)
}

// BytesPrecision formats b using 1024-based units up to TB, rounding to
// precision decimal places and trimming trailing zeros. Negative counts
// are clamped to zero rather than rejected; negative precision is treated
// as zero.
func BytesPrecision(b int64, precision int) string {
	if b < 0 {
		b = 0
	}
	if precision < 0 {
		precision = 0
	}

	pow := 0
	for threshold := int64(1024); pow < len(units)-1 && b >= threshold; threshold *= 1024 {
		pow++
	}

	value := float64(b) / math.Pow(1024, float64(pow))
	scale := math.Pow(10, float64(precision))
	value = math.Round(value*scale) / scale

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + units[pow]
}
