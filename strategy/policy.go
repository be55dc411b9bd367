package strategy

import (
	"fmt"
	"strings"

	"github.com/arloliu/odinplan/types"
)

// Policy selectors accepted in build configuration.
const (
	PolicyRoundRobin = "ROUNDROBIN"
	PolicyOneToOne   = "ONE2ONE"
)

// ForPolicy returns the strategy for a policy selector (case-insensitive).
//
// Parameters:
//   - policy: "ROUNDROBIN" or "ONE2ONE"
//
// Returns:
//   - types.TopologyStrategy: Matching strategy
//   - error: ErrUnknownPolicy for any other value
func ForPolicy(policy string) (types.TopologyStrategy, error) {
	switch strings.ToUpper(policy) {
	case PolicyRoundRobin:
		return NewRoundRobin(), nil
	case PolicyOneToOne:
		return NewOneToOne(), nil
	default:
		return nil, fmt.Errorf("%q: %w", policy, ErrUnknownPolicy)
	}
}
