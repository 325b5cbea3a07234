package kmeans

import (
	"errors"
	"slices"
	"testing"

	"github.com/jmylchreest/imagekmeans/internal/colour"
)

func TestRunDerivedKThreeColours(t *testing.T) {
	var colours []colour.RGB
	for range 4 {
		colours = append(colours, red, green, blue)
	}
	samples := mustSamples(t, colours...)

	for _, method := range ValidInitMethods() {
		var curve []Candidate
		got, err := RunDerivedK(samples, method, newRand(5), Options{
			MaxK:        5,
			OnCandidate: func(c Candidate) { curve = append(curve, c) },
		})
		if err != nil {
			t.Fatalf("RunDerivedK(%s) unexpected error: %v", method, err)
		}
		if got.K != 3 {
			t.Errorf("RunDerivedK(%s) K = %d, want 3", method, got.K)
		}
		if got.WCSS != 0 {
			t.Errorf("RunDerivedK(%s) WCSS = %v, want 0", method, got.WCSS)
		}
		for _, c := range []colour.RGB{red, green, blue} {
			if !slices.Contains(got.Clusters, c) {
				t.Errorf("RunDerivedK(%s) clusters = %v, missing %v", method, got.Clusters, c)
			}
		}

		if len(curve) != 5 {
			t.Fatalf("OnCandidate called %d times, want 5", len(curve))
		}
		for i, c := range curve {
			if c.K != i+1 {
				t.Errorf("curve[%d].K = %d, want %d", i, c.K, i+1)
			}
		}
		if curve[3].WCSS != 0 || curve[4].WCSS != 0 {
			t.Errorf("infeasible candidates = %v, want WCSS of k=3", curve[3:])
		}
	}
}

func TestRunDerivedKSingleColour(t *testing.T) {
	grey := colour.RGB{R: 10, G: 10, B: 10}
	samples := mustSamples(t, repeat(grey, 4)...)

	got, err := RunDerivedK(samples, InitKMeansPlusPlus, newRand(1), Options{MaxK: 5})
	if err != nil {
		t.Fatalf("RunDerivedK() unexpected error: %v", err)
	}
	if got.K != 1 || !slices.Equal(got.Clusters, []colour.RGB{grey}) {
		t.Errorf("RunDerivedK() = %+v, want single cluster %v", got, grey)
	}
}

type fixedPolicy int

func (p fixedPolicy) Select([]Candidate) int { return int(p) }

func TestRunDerivedKClampsPolicy(t *testing.T) {
	samples := mustSamples(t, red, green)

	got, err := RunDerivedK(samples, InitRandom, newRand(1), Options{MaxK: 6, Knee: fixedPolicy(5)})
	if err != nil {
		t.Fatalf("RunDerivedK() unexpected error: %v", err)
	}
	if got.K != 2 {
		t.Errorf("RunDerivedK() K = %d, want largest feasible 2", got.K)
	}

	got, err = RunDerivedK(samples, InitRandom, newRand(1), Options{MaxK: 6, Knee: fixedPolicy(-3)})
	if err != nil {
		t.Fatalf("RunDerivedK() unexpected error: %v", err)
	}
	if got.K != 1 {
		t.Errorf("RunDerivedK() K = %d, want 1", got.K)
	}
}

func TestRunDerivedKMaxKOne(t *testing.T) {
	samples := mustSamples(t, red, green, blue)

	got, err := RunDerivedK(samples, InitRandom, newRand(1), Options{MaxK: 1})
	if err != nil {
		t.Fatalf("RunDerivedK() unexpected error: %v", err)
	}
	if got.K != 1 || len(got.Clusters) != 1 {
		t.Errorf("RunDerivedK() = %+v, want one cluster", got)
	}
}

func TestRunDerivedKInvalid(t *testing.T) {
	samples := mustSamples(t, red)

	if _, err := RunDerivedK(samples, InitRandom, newRand(1), Options{MaxK: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("RunDerivedK() negative MaxK error = %v, want ErrInvalidInput", err)
	}
	if _, err := RunDerivedK(nil, InitRandom, newRand(1), Options{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("RunDerivedK() no samples error = %v, want ErrInvalidInput", err)
	}
	if _, err := RunDerivedK(samples, "forgy", newRand(1), Options{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("RunDerivedK() unknown method error = %v, want ErrInvalidInput", err)
	}
}
