package models

import (
	"encoding/json"
	"fmt"
)

// AlgorithmFamily identifies one of the algorithm families the runner
// contract supports. The concrete set is closed but extensible the same
// way the runner's own `102 Unsupported` exit code is: a family unknown
// to a particular runner build just fails that job, it is never a
// compile-time error here.
type AlgorithmFamily string

const (
	FamilyNW     AlgorithmFamily = "nw"     // exact, global Needleman-Wunsch
	FamilyBanded AlgorithmFamily = "banded" // approximate, banded DP
	FamilyAStar  AlgorithmFamily = "astar"  // approximate, A*-pruned
)

// AlgorithmParams is a tagged union over the parameter sets each algorithm
// family accepts.
type AlgorithmParams interface {
	Family() AlgorithmFamily
	Equal(other AlgorithmParams) bool
}

// NWParams configures the exact Needleman-Wunsch family. It has no
// tunable parameters beyond the cost model, which lives on Job.
type NWParams struct{}

func (NWParams) Family() AlgorithmFamily { return FamilyNW }

func (NWParams) Equal(other AlgorithmParams) bool {
	_, ok := other.(NWParams)
	return ok
}

// BandedParams configures the approximate banded-DP family.
type BandedParams struct {
	Band int `json:"band"`
}

func (BandedParams) Family() AlgorithmFamily { return FamilyBanded }

func (b BandedParams) Equal(other AlgorithmParams) bool {
	o, ok := other.(BandedParams)
	return ok && o.Band == b.Band
}

// AStarParams configures the approximate A*-pruned family.
type AStarParams struct {
	Prune string `json:"prune"` // pruning heuristic identifier
}

func (AStarParams) Family() AlgorithmFamily { return FamilyAStar }

func (a AStarParams) Equal(other AlgorithmParams) bool {
	o, ok := other.(AStarParams)
	return ok && o.Prune == a.Prune
}

// algorithmEnvelope is the wire format for AlgorithmParams: a family tag
// plus the family-specific parameter object.
type algorithmEnvelope struct {
	Family AlgorithmFamily `json:"family"`
	Params json.RawMessage `json:"params,omitempty"`
}

// MarshalAlgorithmParams encodes an AlgorithmParams value to its tagged
// JSON envelope.
func MarshalAlgorithmParams(a AlgorithmParams) ([]byte, error) {
	params, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshaling algorithm params: %w", err)
	}
	return json.Marshal(algorithmEnvelope{Family: a.Family(), Params: params})
}

// UnmarshalAlgorithmParams decodes a tagged JSON envelope into the
// concrete AlgorithmParams implementation for its family.
func UnmarshalAlgorithmParams(data []byte) (AlgorithmParams, error) {
	var env algorithmEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding algorithm envelope: %w", err)
	}
	switch env.Family {
	case FamilyNW:
		return NWParams{}, nil
	case FamilyBanded:
		var p BandedParams
		if len(env.Params) > 0 {
			if err := json.Unmarshal(env.Params, &p); err != nil {
				return nil, fmt.Errorf("decoding banded params: %w", err)
			}
		}
		return p, nil
	case FamilyAStar:
		var p AStarParams
		if len(env.Params) > 0 {
			if err := json.Unmarshal(env.Params, &p); err != nil {
				return nil, fmt.Errorf("decoding astar params: %w", err)
			}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown algorithm family %q", env.Family)
	}
}

func algorithmEqual(a, b AlgorithmParams) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Family() != b.Family() {
		return false
	}
	return a.Equal(b)
}
