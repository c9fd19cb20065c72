package reflector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testMsg struct{ N int }

func TestTypeInfoOf(t *testing.T) {
	ti := TypeInfoOf(testMsg{N: 1})
	require.Equal(t, "github.com/Creativesource-Sys/synapsys/internal/reflector.testMsg", ti.Name)
}

func TestTypeInfoOf_pointer(t *testing.T) {
	require.Equal(t, TypeInfoOf(testMsg{}).Name, TypeInfoOf(&testMsg{}).Name)
}

func TestTypeInfoFor(t *testing.T) {
	require.Equal(t, TypeInfoOf(testMsg{}).Name, TypeInfoFor[testMsg]().Name)
}

func TestTypeInfoOf_nil(t *testing.T) {
	require.Empty(t, TypeInfoOf(nil).Name)
}
