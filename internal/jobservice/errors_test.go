package jobservice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationError_CarriesCode(t *testing.T) {
	err := NewValidationError(406, "unknown method %q", "bogus")
	require.Equal(t, 406, err.Code)
	require.Contains(t, err.Error(), "bogus")
}

func TestInfrastructureError_Unwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInfrastructureError(cause, "putting status: %v", cause)

	require.ErrorIs(t, err, cause)
}

func TestDataSourceError_Unwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := NewDataSourceError(cause, "fetching dataset: %v", cause)

	require.ErrorIs(t, err, cause)
}

func TestPartialReportError_CarriesFailedKinds(t *testing.T) {
	err := NewPartialReportError([]string{"PDF"}, "1 of 2 artifacts failed")
	require.Equal(t, []string{"PDF"}, err.FailedKinds)
}
