package enums

import "fmt"

// BuildSource records where a build's parts list came from.
type BuildSource string

const (
	BuildSourceAI       BuildSource = "ai"
	BuildSourceFallback BuildSource = "fallback"
)

var validBuildSources = []BuildSource{
	BuildSourceAI,
	BuildSourceFallback,
}

// String implements fmt.Stringer.
func (s BuildSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BuildSource.
func (s BuildSource) IsValid() bool {
	for _, candidate := range validBuildSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBuildSource converts raw input into a BuildSource.
func ParseBuildSource(value string) (BuildSource, error) {
	for _, candidate := range validBuildSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid build source %q", value)
}

// FallbackReason explains why the static build was served.
type FallbackReason string

const (
	FallbackReasonRateLimited FallbackReason = "rate_limited"
	FallbackReasonUnavailable FallbackReason = "unavailable"
)

// String implements fmt.Stringer.
func (r FallbackReason) String() string {
	return string(r)
}
