package usecase

import (
	"errors"
	"math/rand/v2"
	"strings"
)

// Disclaimer is appended to every answer drawn from the fallback pool.
const Disclaimer = "\n\n(Note: This is a fallback response. To get real AI responses, please configure one of the provider API keys.)"

var defaultFallbackResponses = []string{
	"I'm an AI assistant created to help answer your questions.",
	"That's an interesting question. Let me think about that...",
	"I can help you with information on a wide range of topics.",
	"I'm designed to provide helpful, harmless, and honest responses.",
	"I don't have personal opinions, but I can offer information on that topic.",
	"I'm constantly learning and improving my responses.",
	"I can assist with coding, writing, research, and many other tasks.",
	"I don't have access to real-time information beyond my training data.",
	"I'm happy to clarify or provide more details if needed.",
	"That's a complex question with multiple perspectives to consider.",
}

// RandSource picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

// globalRand uses the goroutine-safe top-level math/rand/v2 source.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// FallbackPool is a fixed, read-only list of canned answers.
type FallbackPool struct {
	entries []string
}

// DefaultFallbackPool returns the built-in canned answers.
func DefaultFallbackPool() FallbackPool {
	return FallbackPool{entries: append([]string(nil), defaultFallbackResponses...)}
}

// NewFallbackPool copies entries; blank entries are rejected.
func NewFallbackPool(entries []string) (FallbackPool, error) {
	if len(entries) == 0 {
		return FallbackPool{}, errors.New("usecase: fallback pool must not be empty")
	}
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			return FallbackPool{}, errors.New("usecase: fallback pool entries must not be blank")
		}
	}
	return FallbackPool{entries: append([]string(nil), entries...)}, nil
}

// Entries returns a copy of the pool.
func (p FallbackPool) Entries() []string {
	return append([]string(nil), p.entries...)
}

// Pick returns one entry chosen uniformly by r, followed by the Disclaimer.
func (p FallbackPool) Pick(r RandSource) string {
	entries := p.entries
	if len(entries) == 0 {
		entries = defaultFallbackResponses
	}
	if r == nil {
		r = globalRand{}
	}
	return entries[r.IntN(len(entries))] + Disclaimer
}
