package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopeStrings(t *testing.T) {
	require.Equal(t, "Command", ScopeCommand.String())
	require.Equal(t, "Instance", ScopeInstance.String())
	require.Equal(t, "Scope(7)", Scope(7).String())
	require.Len(t, ScopeValues(), 5)

	s, err := ScopeString("device")
	require.NoError(t, err)
	require.Equal(t, ScopeDevice, s)
	_, err = ScopeString("bogus")
	require.Error(t, err)
}

func TestInternalTypeStrings(t *testing.T) {
	require.Equal(t, "Executable", InternalTypeExecutable.String())
	require.False(t, InternalType(3).IsAInternalType())
}
