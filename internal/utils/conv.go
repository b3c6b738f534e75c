package utils

import (
	"fmt"
	"strconv"
)

// ParseID parses a positive database id from a path or form value.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}
