package codegen

import (
	"context"
	"regexp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pragya-git-bug/aibackend/core"
)

var codeRegex = regexp.MustCompile(`^[A-Z]{3}[1-9][0-9]{3}$`)

func never(context.Context, string) (bool, error) { return false, nil }

func TestPrefix(t *testing.T) {
	tests := []struct {
		name     string
		seed     string
		fallback string
		want     string
	}{
		{name: "simple", seed: "Algebra Basics", fallback: "ASS", want: "ALG"},
		{name: "lower case", seed: "geometry", fallback: "ASS", want: "GEO"},
		{name: "leading spaces", seed: "   history", fallback: "ASS", want: "HIS"},
		{name: "inner spaces", seed: "A B  C d", fallback: "QUI", want: "ABC"},
		{name: "digits skipped", seed: "8th grade", fallback: "QUI", want: "THG"},
		{name: "too short", seed: "Jo", fallback: "USR", want: "USR"},
		{name: "no letters", seed: "1234 !!", fallback: "USR", want: "USR"},
		{name: "empty", seed: "", fallback: "ASS", want: "ASS"},
		{name: "non ascii skipped", seed: "Éléonore", fallback: "USR", want: "LON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Prefix(tt.seed, tt.fallback); got != tt.want {
				t.Errorf("Prefix() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("matches pattern", func(t *testing.T) {
		gen := NewGenerator(0)
		for _, seed := range []string{"Algebra Basics", "x", "", "Physics 101"} {
			code, err := gen.Generate(ctx, seed, "ASS", never)
			require.NoError(t, err)
			assert.Regexp(t, codeRegex, code)
		}
	})

	t.Run("digits stay in range", func(t *testing.T) {
		gen := NewGenerator(1)
		gen.intn = func(n int) int { return 0 }
		code, err := gen.Generate(ctx, "Algebra", "ASS", never)
		require.NoError(t, err)
		assert.Equal(t, "ALG1000", code)

		gen.intn = func(n int) int { return n - 1 }
		code, err = gen.Generate(ctx, "Algebra", "ASS", never)
		require.NoError(t, err)
		assert.Equal(t, "ALG9999", code)
	})

	t.Run("retries until free", func(t *testing.T) {
		gen := NewGenerator(0)
		var checked []string
		exists := func(_ context.Context, code string) (bool, error) {
			checked = append(checked, code)
			return len(checked) < 4, nil
		}
		code, err := gen.Generate(ctx, "Quiz night", "QUI", exists)
		require.NoError(t, err)
		assert.Len(t, checked, 4)
		assert.Equal(t, checked[3], code)
	})

	t.Run("exhausted", func(t *testing.T) {
		gen := NewGenerator(0)
		var calls int
		exists := func(context.Context, string) (bool, error) {
			calls++
			return true, nil
		}
		code, err := gen.Generate(ctx, "Algebra", "ASS", exists)
		assert.Empty(t, code)
		assert.True(t, errors.Is(err, ErrGenerationExhausted), "err = %v", err)
		assert.Equal(t, DefaultMaxAttempts, calls)
	})

	t.Run("custom max attempts", func(t *testing.T) {
		gen := NewGenerator(3)
		var calls int
		exists := func(context.Context, string) (bool, error) {
			calls++
			return true, nil
		}
		_, err := gen.Generate(ctx, "Algebra", "ASS", exists)
		assert.True(t, errors.Is(err, ErrGenerationExhausted))
		assert.Equal(t, 3, calls)
	})

	t.Run("lookup failure fails closed", func(t *testing.T) {
		gen := NewGenerator(0)
		dbErr := errors.New("connection refused")
		var calls int
		exists := func(context.Context, string) (bool, error) {
			calls++
			return false, dbErr
		}
		code, err := gen.Generate(ctx, "Algebra", "ASS", exists)
		assert.Empty(t, code)
		assert.Equal(t, 1, calls)

		var pErr *core.PersistenceError
		require.True(t, errors.As(err, &pErr), "err = %v", err)
		assert.Equal(t, dbErr, errors.Cause(pErr.Err))
		assert.False(t, errors.Is(err, ErrGenerationExhausted))
	})
}

func TestGenerator_Assign(t *testing.T) {
	ctx := context.Background()
	gen := NewGenerator(0)

	var calls int
	exists := func(context.Context, string) (bool, error) {
		calls++
		return false, nil
	}

	tests := []struct {
		name      string
		current   string
		isNew     bool
		wantCode  string
		wantCalls int
	}{
		{name: "new with code", current: "ALG1234", isNew: true, wantCode: "ALG1234"},
		{name: "update with code", current: "ALG1234", isNew: false, wantCode: "ALG1234"},
		{name: "update without code", current: "", isNew: false, wantCode: ""},
		{name: "new without code", current: "", isNew: true, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			code, err := gen.Assign(ctx, tt.current, tt.isNew, "Algebra", "ASS", exists)
			require.NoError(t, err)
			if tt.wantCalls == 0 {
				assert.Equal(t, tt.wantCode, code)
			} else {
				assert.Regexp(t, codeRegex, code)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}
