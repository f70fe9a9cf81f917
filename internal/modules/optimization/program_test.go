package optimization

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProgram(t *testing.T) *Program {
	t.Helper()
	p := NewProgram("sample", Minimize)
	for _, v := range []Variable{
		{Name: "a", Objective: 3, Binary: true},
		{Name: "b", Objective: 2, Binary: true},
		{Name: "c", Objective: 4, Binary: true},
	} {
		_, err := p.AddVariable(v)
		require.NoError(t, err)
	}
	p.AddRow(Row{
		Name:  "cover",
		Terms: []Term{{Var: "a", Coef: 1}, {Var: "b", Coef: 1}, {Var: "c", Coef: 1}},
		Bound: AtLeast(2),
	})
	p.AddRow(Row{
		Name:  "limit",
		Terms: []Term{{Var: "a", Coef: 1}, {Var: "c", Coef: 1}},
		Bound: Between(0, 1),
	})
	return p
}

func TestBoundAdmits(t *testing.T) {
	assert.True(t, AtLeast(1).Admits(1, 0))
	assert.False(t, AtLeast(1).Admits(0.5, 1e-6))
	assert.True(t, AtMost(3).Admits(3.0000001, 1e-6))
	assert.True(t, Between(1, 2).Admits(1.5, 0))
	assert.False(t, Between(1, 2).Admits(2.5, 0))
	assert.True(t, Exactly(1).Admits(1, 0))
	assert.False(t, Exactly(1).Admits(0, 1e-6))
}

func TestProgram_AddVariableRejectsDuplicates(t *testing.T) {
	p := sampleProgram(t)
	_, err := p.AddVariable(Variable{Name: "a"})
	assert.ErrorIs(t, err, ErrDuplicateVariable)

	idx, ok := p.VariableIndex("c")
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, []string{"a", "b", "c"}, p.Binaries())
}

func TestProgram_Validate(t *testing.T) {
	p := sampleProgram(t)
	require.NoError(t, p.Validate())

	p.AddRow(Row{Name: "cover", Bound: AtLeast(0)})
	assert.ErrorIs(t, p.Validate(), ErrDuplicateRow)

	p = sampleProgram(t)
	p.AddRow(Row{Name: "ghost", Terms: []Term{{Var: "z", Coef: 1}}, Bound: AtLeast(0)})
	assert.ErrorIs(t, p.Validate(), ErrUnknownVariable)

	p = sampleProgram(t)
	p.AddRow(Row{Name: "inverted", Bound: Between(3, 1)})
	assert.ErrorIs(t, p.Validate(), ErrInvalidBound)
}

func TestProgram_EvaluateAssignment(t *testing.T) {
	p := sampleProgram(t)
	values := map[string]float64{"a": 1, "b": 1}

	assert.InDelta(t, 5.0, p.ObjectiveValue(values), 1e-9)
	assert.Empty(t, p.Violations(values, 1e-9))

	values = map[string]float64{"a": 1, "c": 1}
	assert.Equal(t, []string{"limit"}, p.Violations(values, 1e-9))

	row, ok := p.Row("cover")
	require.True(t, ok)
	assert.InDelta(t, 2.0, row.Activity(values), 1e-9)
}

func TestCodec_RoundTrip(t *testing.T) {
	p := sampleProgram(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeProgram(&buf, p))

	decoded, err := DecodeProgram(&buf)
	require.NoError(t, err)

	assert.Equal(t, p.Name, decoded.Name)
	assert.Equal(t, p.Direction, decoded.Direction)
	assert.Equal(t, p.Variables, decoded.Variables)
	assert.Equal(t, p.Rows, decoded.Rows)

	idx, ok := decoded.VariableIndex("b")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestCodec_RejectsGarbage(t *testing.T) {
	_, err := DecodeProgram(bytes.NewReader([]byte{0xc1, 0x00}))
	assert.Error(t, err)
}
