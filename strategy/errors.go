package strategy

import (
	"fmt"

	"github.com/arloliu/odinplan/types"
)

// ErrUnknownPolicy indicates that no topology strategy matches a policy selector.
var ErrUnknownPolicy = fmt.Errorf("unknown topology policy (want %s or %s): %w",
	PolicyRoundRobin, PolicyOneToOne, types.ErrInvalidConfig)
