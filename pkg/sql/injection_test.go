package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckParameterForInjection_DetectsClassicPayload(t *testing.T) {
	result := CheckParameterForInjection(0, "' OR 1=1 --")

	require.NotNil(t, result)
	assert.True(t, result.IsSQLi)
	assert.NotEmpty(t, result.Fingerprint)
	assert.Equal(t, 0, result.ParamIndex)
	assert.Equal(t, "' OR 1=1 --", result.ParamValue)
}

func TestCheckParameterForInjection_CleanStringPasses(t *testing.T) {
	assert.Nil(t, CheckParameterForInjection(0, "alice@example.com"))
	assert.Nil(t, CheckParameterForInjection(1, "O'Brien"))
}

func TestCheckParameterForInjection_NonStringsAreNotChecked(t *testing.T) {
	assert.Nil(t, CheckParameterForInjection(0, 42))
	assert.Nil(t, CheckParameterForInjection(1, 3.14))
	assert.Nil(t, CheckParameterForInjection(2, true))
	assert.Nil(t, CheckParameterForInjection(3, nil))
}

func TestCheckAllParameters(t *testing.T) {
	results := CheckAllParameters([]any{"alice", 7, "'; DROP TABLE users --", "1' UNION SELECT password FROM users --"})

	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].ParamIndex)
	assert.Equal(t, 3, results[1].ParamIndex)
	for _, r := range results {
		assert.True(t, r.IsSQLi)
	}
}

func TestCheckAllParameters_Empty(t *testing.T) {
	assert.Empty(t, CheckAllParameters(nil))
	assert.Empty(t, CheckAllParameters([]any{}))
}
