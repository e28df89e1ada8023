/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"reflect"
	"sort"
	"testing"
)

func TestShuffleDeterminism(t *testing.T) {
	input := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

	first := shuffleStrings(input, "seed-one")
	second := shuffleStrings(input, "seed-one")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different orders:\n%v\n%v", first, second)
	}
}

func TestShuffleSeedsDiffer(t *testing.T) {
	input := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

	tests := []struct {
		name  string
		seed1 string
		seed2 string
	}{
		{name: "unrelated seeds", seed1: "alpha", seed2: "bravo"},
		{name: "single char difference", seed1: "deck-1", seed2: "deck-2"},
		{name: "prefix seeds", seed1: "deck", seed2: "deck-round-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := shuffleStrings(input, tt.seed1)
			second := shuffleStrings(input, tt.seed2)

			if reflect.DeepEqual(first, second) {
				t.Errorf("seeds %q and %q produced the same order: %v", tt.seed1, tt.seed2, first)
			}
		})
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	input := []string{"e", "d", "c", "b", "a", "a2", "b2", "c2"}

	shuffled := shuffleStrings(input, "any-seed")

	if len(shuffled) != len(input) {
		t.Fatalf("length changed: %d -> %d", len(input), len(shuffled))
	}

	wantSorted := append([]string{}, input...)
	gotSorted := append([]string{}, shuffled...)
	sort.Strings(wantSorted)
	sort.Strings(gotSorted)

	if !reflect.DeepEqual(wantSorted, gotSorted) {
		t.Errorf("not a permutation: %v vs %v", input, shuffled)
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	input := []string{"a", "b", "c", "d", "e"}
	original := append([]string{}, input...)

	_ = shuffleStrings(input, "whatever")

	if !reflect.DeepEqual(input, original) {
		t.Errorf("input mutated: %v", input)
	}
}

func TestShuffleEdgeSizes(t *testing.T) {
	if got := shuffleStrings(nil, "seed"); len(got) != 0 {
		t.Errorf("empty input produced %v", got)
	}
	if got := shuffleStrings([]string{"only"}, "seed"); !reflect.DeepEqual(got, []string{"only"}) {
		t.Errorf("single element changed: %v", got)
	}
}

func TestShuffleForRoundIndependence(t *testing.T) {
	ids := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}

	round1 := shuffleForRound(ids, "deck-a", 1)
	round2 := shuffleForRound(ids, "deck-a", 2)
	round3 := shuffleForRound(ids, "deck-a", 3)

	if reflect.DeepEqual(round1, round2) || reflect.DeepEqual(round2, round3) || reflect.DeepEqual(round1, round3) {
		t.Errorf("rounds share an ordering:\n1: %v\n2: %v\n3: %v", round1, round2, round3)
	}

	// Same deck and round always reproduces the same order.
	if again := shuffleForRound(ids, "deck-a", 2); !reflect.DeepEqual(round2, again) {
		t.Errorf("round 2 not reproducible: %v vs %v", round2, again)
	}
}

func TestShuffleCardIDsUsesDeckSeed(t *testing.T) {
	ids := []string{"c1", "c2", "c3", "c4", "c5", "c6"}

	if !reflect.DeepEqual(shuffleCardIDs(ids, "deck-a"), shuffleStrings(ids, "deck-a")) {
		t.Error("shuffleCardIDs does not match a deck-id-seeded shuffle")
	}
}

func TestRandomItem(t *testing.T) {
	items := []string{"a", "b", "c", "d"}

	first := randomItem(items, "pick-seed")
	second := randomItem(items, "pick-seed")

	if first != second {
		t.Errorf("same seed picked %q then %q", first, second)
	}

	found := false
	for _, item := range items {
		if item == first {
			found = true
		}
	}
	if !found {
		t.Errorf("picked %q, not in input", first)
	}

	if got := randomItem(nil, "seed"); got != "" {
		t.Errorf("empty input picked %q", got)
	}
}

func TestRandomSubset(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{name: "partial", count: 3, want: 3},
		{name: "exact", count: 5, want: 5},
		{name: "overshoot clamps", count: 10, want: 5},
		{name: "zero", count: 0, want: 0},
		{name: "negative clamps", count: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := randomSubset(items, tt.count, "subset-seed")
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}

			seen := make(map[string]bool)
			for _, item := range got {
				if seen[item] {
					t.Errorf("duplicate %q in subset", item)
				}
				seen[item] = true
			}
		})
	}
}
