// Package codegen derives short human readable codes (eg: "ALG1234") from a name.
package codegen

import (
	"context"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
)

const (
	DefaultMaxAttempts = 10

	prefixLen = 3
	minDigits = 1000
	maxDigits = 9999
)

var ErrGenerationExhausted = errors.New("unable to generate a unique code")

// ExistsFunc reports whether a code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	maxAttempts int
	intn        func(n int) int
}

func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{maxAttempts: maxAttempts, intn: rand.Intn}
}

// Prefix returns the first 3 letters of seed, upper cased.
// fallback is returned when seed does not contain 3 letters.
func Prefix(seed, fallback string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(seed) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == prefixLen {
				return b.String()
			}
		}
	}
	return fallback
}

func (g *Generator) candidate(prefix string) string {
	return prefix + strconv.Itoa(minDigits+g.intn(maxDigits-minDigits+1))
}

// Generate returns a code made of Prefix(seed, fallback) and 4 random digits that exists does not know of.
// A failing existence check aborts the generation.
func (g *Generator) Generate(ctx context.Context, seed, fallback string, exists ExistsFunc) (string, error) {
	prefix := Prefix(seed, fallback)
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code := g.candidate(prefix)
		taken, err := exists(ctx, code)
		if err != nil {
			return "", core.NewPersistenceError("checking code uniqueness", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.Wrapf(ErrGenerationExhausted, "%d attempts for prefix %s", g.maxAttempts, prefix)
}

// Assign generates a code for new entities without one.
// current is returned as is when it is set or when the entity is not new.
func (g *Generator) Assign(ctx context.Context, current string, isNew bool, seed, fallback string, exists ExistsFunc) (string, error) {
	if current != "" || !isNew {
		return current, nil
	}
	return g.Generate(ctx, seed, fallback, exists)
}
