package statebox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suffixOp struct{ Suffix string }

func (o suffixOp) Invoke(v string) (string, error) { return v + o.Suffix, nil }

func TestInvokeFunc(t *testing.T) {
	got, err := invoke(OpFunc(strings.ToUpper), "hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)
}

func TestInvokeObj(t *testing.T) {
	got, err := invoke(OpObj[string](suffixOp{Suffix: "!"}), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello!", got)
}

func TestInvokeObjFailure(t *testing.T) {
	got, err := invoke(OpObj[string](failOp{err: assert.AnError}), "hello")
	assert.ErrorIs(t, err, ErrOperationFailed)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "hello", got)
}

func TestInvokeNamed(t *testing.T) {
	got, err := invoke(OpNamed("upper", strings.ToUpper), "hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)
}

func TestInvokeProcPassesValueThrough(t *testing.T) {
	ran := false
	got, err := invoke(OpProc[string](func() { ran = true }), "hello")
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "hello", got)
}

func TestInvokeSupplierReplacesValue(t *testing.T) {
	got, err := invoke(OpSupplier(func() string { return "fresh" }), "stale")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestInvokeNil(t *testing.T) {
	got, err := invoke[string](nil, "hello")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	assert.Equal(t, "hello", got)
}

func TestRepresentationProbes(t *testing.T) {
	named := OpNamed("upper", strings.ToUpper)
	name, ok := NamedOf(named)
	require.True(t, ok)
	assert.Equal(t, "upper", name)
	_, ok = NamedOf(OpFunc(strings.ToUpper))
	assert.False(t, ok)

	obj, ok := ObjOf(OpObj[string](suffixOp{Suffix: "!"}))
	require.True(t, ok)
	assert.Equal(t, suffixOp{Suffix: "!"}, obj)
	_, ok = ObjOf(named)
	assert.False(t, ok)

	assert.True(t, MatchNamed[string]()(named))
	assert.False(t, MatchNamed[string]()(OpFunc(strings.ToUpper)))
	assert.True(t, MatchObj[string]()(OpObj[string](suffixOp{})))
	assert.False(t, MatchObj[string]()(named))
}
