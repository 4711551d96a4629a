package ratelimit

import "errors"

// Mode selects who owns the rate limit state of a client.
type Mode int

const (
	// ModeNone disables limiting, for tests or callers that throttle externally.
	ModeNone Mode = iota
	// ModeOwned gives the client its own Limiter.
	ModeOwned
	// ModeShared uses an Acquirer supplied by the caller, shared with other clients.
	ModeShared
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeOwned:
		return "owned"
	case ModeShared:
		return "shared"
	default:
		return "unknown"
	}
}

// Option configures rate limiting for a client.
type Option struct {
	Mode   Mode
	Quota  Quota    // used by ModeOwned
	Shared Acquirer // used by ModeShared
}

// None disables rate limiting.
func None() Option {
	return Option{Mode: ModeNone}
}

// Owned gives the client a private limiter enforcing q.
func Owned(q Quota) Option {
	return Option{Mode: ModeOwned, Quota: q}
}

// Shared makes the client acquire from a, which may be shared with other clients. a may be
// a *Limiter or a *RedisLimiter.
func Shared(a Acquirer) Option {
	return Option{Mode: ModeShared, Shared: a}
}

// Build returns the Acquirer o describes.
func (o Option) Build() (Acquirer, error) {
	switch o.Mode {
	case ModeNone:
		return Nop{}, nil
	case ModeOwned:
		l, err := NewLimiter(o.Quota)
		if err != nil {
			return nil, err
		}
		return l, nil
	case ModeShared:
		if o.Shared == nil {
			return nil, errors.New("shared rate limit mode requires an Acquirer")
		}
		return o.Shared, nil
	default:
		return nil, errors.New("unknown rate limit mode " + o.Mode.String())
	}
}
