// File: ring/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-ring/api"
)

// ShrinkPolicy decides which elements a shrink drops once the free slots
// are exhausted.
type ShrinkPolicy int

const (
	// ShrinkDropOldest keeps the newest elements, like an overwrite would.
	ShrinkDropOldest ShrinkPolicy = iota
	// ShrinkDropNewest keeps the oldest elements.
	ShrinkDropNewest
	// ShrinkReject refuses to shrink below the number of held elements.
	ShrinkReject
)

func (p ShrinkPolicy) String() string {
	switch p {
	case ShrinkDropOldest:
		return "drop_oldest"
	case ShrinkDropNewest:
		return "drop_newest"
	case ShrinkReject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseShrinkPolicy accepts the String form of a policy; "" means the default.
func ParseShrinkPolicy(s string) (ShrinkPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop_oldest":
		return ShrinkDropOldest, nil
	case "drop_newest":
		return ShrinkDropNewest, nil
	case "reject":
		return ShrinkReject, nil
	}
	return ShrinkDropOldest, errors.Wrapf(api.ErrInvalidArgument, "unknown shrink policy %q", s)
}

type options struct {
	policy ShrinkPolicy
}

// Option customizes ring construction.
type Option func(*options)

// WithShrinkPolicy overrides the default ShrinkDropOldest.
func WithShrinkPolicy(p ShrinkPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}
