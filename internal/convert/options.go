package convert

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// CollisionPolicy decides what happens when two source classes write the
// same instance id into one destination class.
type CollisionPolicy string

const (
	// CollisionOverwrite keeps the instance written last and warns.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionKeepFirst keeps the instance written first and warns.
	CollisionKeepFirst CollisionPolicy = "keep-first"
	// CollisionReject aborts the conversion with a *CollisionError.
	CollisionReject CollisionPolicy = "reject"
)

// String implements pflag.Value.
func (p CollisionPolicy) String() string { return string(p) }

// Type implements pflag.Value.
func (p *CollisionPolicy) Type() string { return "policy" }

// Set implements pflag.Value.
func (p *CollisionPolicy) Set(s string) error {
	switch v := CollisionPolicy(s); v {
	case CollisionOverwrite, CollisionKeepFirst, CollisionReject:
		*p = v
		return nil
	default:
		return errors.Newf("unknown collision policy %q (want overwrite, keep-first or reject)", s)
	}
}

// MissingReferencePolicy decides what happens when a merge cannot find the
// referenced description instance.
type MissingReferencePolicy string

const (
	// MissingReferenceFail aborts the conversion with a *ReferenceError.
	MissingReferenceFail MissingReferencePolicy = "fail"
	// MissingReferenceSkip converts the instance without the description
	// and warns.
	MissingReferenceSkip MissingReferencePolicy = "skip"
)

// String implements pflag.Value.
func (p MissingReferencePolicy) String() string { return string(p) }

// Type implements pflag.Value.
func (p *MissingReferencePolicy) Type() string { return "policy" }

// Set implements pflag.Value.
func (p *MissingReferencePolicy) Set(s string) error {
	switch v := MissingReferencePolicy(s); v {
	case MissingReferenceFail, MissingReferenceSkip:
		*p = v
		return nil
	default:
		return errors.Newf("unknown missing-reference policy %q (want fail or skip)", s)
	}
}

// Options configures a Converter. Zero values select the defaults.
type Options struct {
	Collision        CollisionPolicy
	MissingReference MissingReferencePolicy
	// Logger receives per-class debug messages. Diagnostics are returned in
	// the Result, not logged.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Collision == "" {
		o.Collision = CollisionOverwrite
	}

	if o.MissingReference == "" {
		o.MissingReference = MissingReferenceFail
	}

	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return o
}
