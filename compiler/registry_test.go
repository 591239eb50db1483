package compiler

import (
	"testing"

	"github.com/deepnoodle-ai/classgen/codegen"
	"github.com/stretchr/testify/require"
)

func info(name string, members ...string) *EnumInfo {
	e := &EnumInfo{Name: name, BinaryName: BinaryName(name), Kind: codegen.Numeric}
	for i, m := range members {
		e.Members = append(e.Members, codegen.Member{Name: m, Ordinal: i, Int: int32(i)})
	}
	return e
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Register(info("ui.Color", "Red", "Green")))
	require.True(t, r.Register(info("Size", "Small")))
	require.True(t, r.Register(info("a.Shape", "Circle")))
	require.True(t, r.Register(info("b.Shape", "Square")))

	tests := []struct {
		enum   string
		member string
		found  bool
		value  int32
	}{
		{"ui.Color", "Green", true, 1},
		{"Color", "Red", true, 0},
		{"Size", "Small", true, 0},
		{"Color", "Blue", false, 0},
		{"Missing", "Red", false, 0},
		{"Shape", "Circle", false, 0}, // ambiguous simple name
		{"a.Shape", "Circle", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.enum+"."+tt.member, func(t *testing.T) {
			m, ok := r.Lookup(tt.enum, tt.member)
			require.Equal(t, tt.found, ok)
			require.Equal(t, tt.value, m.Int)
		})
	}
	require.Equal(t, []string{"Size", "a.Shape", "b.Shape", "ui.Color"}, r.Names())
}

func TestRegistryFirstWins(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Register(info("Color", "Red")))
	require.False(t, r.Register(info("Color", "Blue")))
	_, ok := r.Lookup("Color", "Blue")
	require.False(t, ok)

	other := NewRegistry()
	other.Register(info("Color", "Green"))
	other.Register(info("Size", "Large"))
	r.Merge(other)
	require.Equal(t, []string{"Color", "Size"}, r.Names())
	_, ok = r.Lookup("Color", "Green")
	require.False(t, ok)
	_, ok = r.Lookup("Size", "Large")
	require.True(t, ok)
}
