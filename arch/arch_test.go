package arch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapcorpus/snapcorpus/arch"
)

func TestDispatchRejectsUndefined(t *testing.T) {
	_, err := arch.Dispatch(arch.Undefined, map[arch.ID]func() (int, error){
		arch.AMD64: func() (int, error) { return 1, nil },
	})
	require.ErrorIs(t, err, arch.ErrUndefinedArch)
}

func TestDispatchUnknown(t *testing.T) {
	_, err := arch.Dispatch(arch.ID(99), map[arch.ID]func() (int, error){
		arch.AMD64: func() (int, error) { return 1, nil },
	})
	require.ErrorIs(t, err, arch.ErrUnknownArch)
}

func TestDispatchOK(t *testing.T) {
	got, err := arch.Dispatch(arch.AMD64, map[arch.ID]func() (int, error){
		arch.AMD64: func() (int, error) { return 42, nil },
	})
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestIDString(t *testing.T) {
	require.Equal(t, "undefined", arch.Undefined.String())
	require.Equal(t, "amd64", arch.AMD64.String())
	require.Equal(t, "unknown", arch.ID(7).String())
}
