package models_test

import (
	"testing"

	"github.com/pairwise-alignment/pa-bench/internal/models"
)

func TestAlgorithmParamsEnvelopeRoundTrip(t *testing.T) {
	cases := []models.AlgorithmParams{
		models.NWParams{},
		models.BandedParams{Band: 16},
		models.AStarParams{Prune: "gap-cost"},
	}

	for _, original := range cases {
		encoded, err := models.MarshalAlgorithmParams(original)
		if err != nil {
			t.Fatalf("MarshalAlgorithmParams(%v): %v", original, err)
		}
		decoded, err := models.UnmarshalAlgorithmParams(encoded)
		if err != nil {
			t.Fatalf("UnmarshalAlgorithmParams: %v", err)
		}
		if !original.Equal(decoded) {
			t.Fatalf("round-tripped %v != original %v", decoded, original)
		}
	}
}

func TestUnmarshalAlgorithmParamsUnknownFamily(t *testing.T) {
	_, err := models.UnmarshalAlgorithmParams([]byte(`{"family":"bogus"}`))
	if err == nil {
		t.Fatalf("expected error for unknown family")
	}
}
