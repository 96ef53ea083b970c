package game

// Verdict is the dealer's answer to a claim.
type Verdict int

const (
	VerdictNone Verdict = iota
	// VerdictPoint is given for a valid set.
	VerdictPoint
	// VerdictPenalty is given for a full selection that is not a set.
	VerdictPenalty
	// VerdictWithdrawn is given when the claim no longer holds a full
	// selection by the time it is judged, or was drained at the end of a
	// round. It carries no freeze.
	VerdictWithdrawn
)

func (v Verdict) String() string {
	switch v {
	case VerdictNone:
		return "none"
	case VerdictPoint:
		return "point"
	case VerdictPenalty:
		return "penalty"
	case VerdictWithdrawn:
		return "withdrawn"
	default:
		return "unknown"
	}
}

// PlayerState is the phase of a player's actor.
type PlayerState int

const (
	PlayerStateAwaitingInput PlayerState = iota
	PlayerStateActing
	PlayerStateAwaitingVerdict
	PlayerStateFrozen
	PlayerStateTerminated
)

func (s PlayerState) String() string {
	switch s {
	case PlayerStateAwaitingInput:
		return "awaiting-input"
	case PlayerStateActing:
		return "acting"
	case PlayerStateAwaitingVerdict:
		return "awaiting-verdict"
	case PlayerStateFrozen:
		return "frozen"
	case PlayerStateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in API responses.
func (s PlayerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
