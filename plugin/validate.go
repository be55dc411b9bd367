package plugin

import (
	"fmt"
	"slices"

	"github.com/arloliu/odinplan/types"
)

// ValidateProcessCount checks that a build's total process count is one of the
// node counts a detector ships templates for.
//
// It has no side effects and may be called any number of times.
//
// Parameters:
//   - count: Total OdinData process count
//   - supported: Supported node counts (order irrelevant)
//
// Returns:
//   - error: types.ErrProcessCountMismatch listing the supported set, nil if supported
func ValidateProcessCount(count int, supported []int) error {
	if slices.Contains(supported, count) {
		return nil
	}

	set := slices.Clone(supported)
	slices.Sort(set)
	set = slices.Compact(set)

	return fmt.Errorf("total number of OdinData processes is %d, must be one of %v: %w",
		count, set, types.ErrProcessCountMismatch)
}
