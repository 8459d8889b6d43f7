package ballot

import (
	"encoding/json"
	"fmt"
)

type Phase uint

const (
	PhaseUncreated Phase = iota
	PhaseCreated
	PhaseVotingOpen
	PhaseVotingClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseUncreated:
		return "uncreated"
	case PhaseCreated:
		return "created"
	case PhaseVotingOpen:
		return "voting-open"
	case PhaseVotingClosed:
		return "voting-closed"
	default:
		return ""
	}
}

func (p Phase) IsValid() bool {
	return p <= PhaseVotingClosed
}

// Next returns the only phase `p` may move to. The closed phase has no
// next phase and returns itself.
func (p Phase) Next() Phase {
	switch p {
	case PhaseUncreated:
		return PhaseCreated
	case PhaseCreated:
		return PhaseVotingOpen
	case PhaseVotingOpen:
		return PhaseVotingClosed
	default:
		return PhaseVotingClosed
	}
}

// Before reports whether `p` comes earlier in the lifecycle than `o`.
func (p Phase) Before(o Phase) bool {
	return p < o
}

func ParsePhase(s string) (Phase, error) {
	for _, p := range []Phase{PhaseUncreated, PhaseCreated, PhaseVotingOpen, PhaseVotingClosed} {
		if p.String() == s {
			return p, nil
		}
	}

	return PhaseUncreated, fmt.Errorf("unknown phase: %q", s)
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err = json.Unmarshal(b, &s); err != nil {
		return
	}

	*p, err = ParsePhase(s)
	return
}

func (p Phase) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}
