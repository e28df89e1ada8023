/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import "strconv"

// Deterministic shuffling. A seed string is hashed to 32 bits (djb2 xor
// variant), which drives a mulberry32 generator, which drives Fisher-Yates.
// The same (input, seed) pair always produces the same permutation, so a
// deck replays in the same order across reloads.

func hashSeed(seed string) uint32 {
	var hash uint32 = 5381
	for i := 0; i < len(seed); i++ {
		hash = (hash * 33) ^ uint32(seed[i])
	}
	return hash
}

// seededRand returns a function yielding floats in [0, 1) from a mulberry32
// stream. Fast and well-mixed, not cryptographic.
func seededRand(seed string) func() float64 {
	state := hashSeed(seed)

	return func() float64 {
		state += 0x6d2b79f5
		t := state
		t = (t ^ (t >> 15)) * (t | 1)
		t ^= t + (t^(t>>7))*(t|61)
		return float64(t^(t>>14)) / 4294967296
	}
}

// shuffleStrings returns a new slice holding a seeded permutation of input.
// The input is never mutated.
func shuffleStrings(input []string, seed string) []string {
	result := make([]string, len(input))
	copy(result, input)

	random := seededRand(seed)

	for i := len(result) - 1; i > 0; i-- {
		j := int(random() * float64(i+1))
		result[i], result[j] = result[j], result[i]
	}

	return result
}

// shuffleCardIDs permutes card ids with a deck-specific seed, so the same
// deck always shuffles the same way.
func shuffleCardIDs(cardIDs []string, deckID string) []string {
	return shuffleStrings(cardIDs, deckID)
}

// shuffleForRound permutes card ids with a round-specific seed, giving each
// Monikers round an independent but reproducible order.
func shuffleForRound(cardIDs []string, deckID string, round int) []string {
	return shuffleStrings(cardIDs, deckID+"-round-"+strconv.Itoa(round))
}

// randomItem picks one element by seed. Returns "" for an empty slice.
func randomItem(items []string, seed string) string {
	if len(items) == 0 {
		return ""
	}
	random := seededRand(seed)
	return items[int(random()*float64(len(items)))]
}

// randomSubset picks up to count elements by seed, reusing the shuffle.
func randomSubset(items []string, count int, seed string) []string {
	shuffled := shuffleStrings(items, seed)
	if count > len(shuffled) {
		count = len(shuffled)
	}
	if count < 0 {
		count = 0
	}
	return shuffled[:count]
}
