package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, name string, v any, args ...string) any {
	t.Helper()
	fn, ok := Builtins()[name]
	require.True(t, ok, "builtin %q not found", name)
	got, err := fn(v, args)
	require.NoError(t, err)
	return got
}

func TestStringBuiltins(t *testing.T) {
	assert.Equal(t, "HELLO", apply(t, "upper", "hello"))
	assert.Equal(t, "hello", apply(t, "lower", "HELLO"))
	assert.Equal(t, "Hello world", apply(t, "ucFirst", "hello world"))
	assert.Equal(t, "Hello World", apply(t, "title", "hello world"))
	assert.Equal(t, "x", apply(t, "trim", "  x  "))
	assert.Equal(t, "$10", apply(t, "prefix", "10", "$"))
	assert.Equal(t, "10%", apply(t, "suffix", "10", "%"))
	assert.Equal(t, "ell", apply(t, "substr", "hello", "1", "4"))
	assert.Equal(t, "007", apply(t, "padl", "7", "3", "0"))
}

func TestNumericBuiltins(t *testing.T) {
	assert.Equal(t, 3.14, apply(t, "round", 3.14159, "2"))
	assert.Equal(t, 3.0, apply(t, "round", 3.4))
	assert.Equal(t, 15.0, apply(t, "add", 10.0, "5"))
	assert.Equal(t, 20.0, apply(t, "mul", 10.0, "2"))
	assert.Equal(t, int64(3), apply(t, "int", 3.9))
	assert.Equal(t, "10.00", apply(t, "formatN", 10.0))
	assert.Equal(t, "10.5", apply(t, "formatN", 10.5, "1"))
}

func TestNumericBuiltinsCoerceStrings(t *testing.T) {
	assert.Equal(t, 11.0, apply(t, "add", "10", "1"))
}

func TestNumericBuiltinRejectsNonNumbers(t *testing.T) {
	fn := Builtins()["round"]
	_, err := fn("not a number", nil)
	assert.Error(t, err)
}

func TestArityErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"prefix": nil,
		"suffix": {"a", "b"},
		"substr": {"1"},
		"add":    nil,
	} {
		fn := Builtins()[name]
		_, err := fn("x", args)
		assert.Error(t, err, "builtin %q should reject %d args", name, len(args))
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "10", Stringify(float64(10)))
	assert.Equal(t, "10.5", Stringify(10.5))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "x", Stringify("x"))
}
