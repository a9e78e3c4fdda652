package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes an injection pattern found in one
// positional parameter.
type InjectionCheckResult struct {
	IsSQLi      bool   // an injection pattern was detected
	Fingerprint string // libinjection fingerprint of the pattern
	ParamIndex  int    // zero-based position of the offending parameter
	ParamValue  any    // the value that was checked
}

// CheckParameterForInjection runs libinjection over a positional parameter
// value and returns a non-nil result when an injection pattern is found.
// Only strings are inspected; numbers, booleans, and nil cannot carry
// injection payloads and always pass.
func CheckParameterForInjection(index int, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if !isSQLi {
		return nil
	}

	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		ParamIndex:  index,
		ParamValue:  value,
	}
}

// CheckAllParameters screens every positional parameter and returns one
// result per parameter that failed. An empty slice means all values are
// clean.
func CheckAllParameters(params []any) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for i, value := range params {
		if result := CheckParameterForInjection(i, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
