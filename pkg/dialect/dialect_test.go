package dialect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisualBasic(t *testing.T) {
	d := VisualBasic()
	require.NoError(t, d.Validate())
	assert.Equal(t, "'", d.CommentMarker)
	assert.Equal(t, []string{"function", "sub"}, d.MethodStarts)
	assert.Equal(t, []string{"end function", "end sub"}, d.MethodEnds)
	assert.Equal(t, "imports", d.ImportMarker)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Dialect)
	}{
		{"missing name", func(d *Dialect) { d.Name = "" }},
		{"multi-char comment", func(d *Dialect) { d.CommentMarker = "//" }},
		{"empty comment", func(d *Dialect) { d.CommentMarker = "" }},
		{"missing class end", func(d *Dialect) { d.ClassEnd = "" }},
		{"no method starts", func(d *Dialect) { d.MethodStarts = nil }},
		{"empty method end", func(d *Dialect) { d.MethodEnds = []string{""} }},
		{"missing import", func(d *Dialect) { d.ImportMarker = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := VisualBasic()
			tt.mutate(&d)
			err := d.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDialect))
		})
	}
}

func TestNormalized(t *testing.T) {
	d := Dialect{
		Name:         " Pascal ",
		Extensions:   []string{".PAS"},
		ClassStart:   "CLASS",
		MethodStarts: []string{"Procedure"},
	}
	n := d.Normalized()
	assert.Equal(t, "pascal", n.Name)
	assert.Equal(t, []string{".pas"}, n.Extensions)
	assert.Equal(t, "class", n.ClassStart)
	assert.Equal(t, []string{"procedure"}, n.MethodStarts)
	assert.Nil(t, n.MethodEnds)
}

func TestIsComparator(t *testing.T) {
	d := VisualBasic()
	assert.True(t, d.IsComparator("class bylength : implements icomparer(of string)"))
	assert.True(t, d.IsComparator("class point implements icomparable"))
	assert.False(t, d.IsComparator("class solver"))
}

func TestFingerprint(t *testing.T) {
	a := VisualBasic()
	b := VisualBasic()
	b.Name = "other"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "name must not affect fingerprint")

	b.ImportMarker = "using"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"vb"}, r.Names())
	assert.Equal(t, "vb", r.Default().Name)

	d, err := r.ForPath("/tmp/Solution.VB")
	require.NoError(t, err)
	assert.Equal(t, "vb", d.Name)

	_, err = r.ForPath("main.go")
	assert.ErrorIs(t, err, ErrUnknownDialect)

	_, err = r.Lookup("cobol")
	assert.ErrorIs(t, err, ErrUnknownDialect)

	custom := VisualBasic()
	custom.Name = "VBA"
	custom.Extensions = []string{"cls"}
	require.NoError(t, r.Register(custom))

	d, err = r.ForPath("module.cls")
	require.NoError(t, err)
	assert.Equal(t, "vba", d.Name)
	assert.Contains(t, r.Extensions(), ".cls")

	require.NoError(t, r.SetDefault("VBA"))
	assert.Equal(t, "vba", r.Default().Name)
	assert.ErrorIs(t, r.SetDefault("nope"), ErrUnknownDialect)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()
	err := r.Register(Dialect{Name: "broken"})
	assert.ErrorIs(t, err, ErrInvalidDialect)
	assert.Equal(t, []string{"vb"}, r.Names())
}

func TestResolve(t *testing.T) {
	r := NewRegistry()

	d, err := r.Resolve("", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "vb", d.Name, "unknown extension falls back to default")

	_, err = r.Resolve("missing", "a.vb")
	assert.ErrorIs(t, err, ErrUnknownDialect)

	d, err = r.Resolve("", "x.bas")
	require.NoError(t, err)
	assert.Equal(t, "vb", d.Name)
}
