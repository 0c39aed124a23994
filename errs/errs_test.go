package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ErrInvalidMagic, ErrInvalidHeaderSize, ErrUnsupportedProcessor,
		ErrUnsupportedEncoding, ErrDuplicateGroupID, ErrDuplicateGroupName,
		ErrDuplicateParamName, ErrGroupNotFound, ErrParamNotFound,
		ErrTypeMismatch, ErrInconsistentMetadata, ErrNoFrames,
		ErrUnsupportedAlgorithm,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			require.NotErrorIs(t, a, b)
		}
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: offset 7", ErrInvalidMagic)
	require.ErrorIs(t, wrapped, ErrInvalidMagic)
	require.False(t, errors.Is(wrapped, ErrNoFrames))
}
