package util

import (
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// ParseFloat parses a float of the precision of T. Surrounding spaces are ignored.
func ParseFloat[T constraints.Float](s string) (T, error) {
	var zero T
	v, err := strconv.ParseFloat(strings.TrimSpace(s), int(unsafe.Sizeof(zero))*8)
	return T(v), err
}
