package api

import "maps"

// Metadata contains additional context passed to capability handlers
type Metadata map[string]any

const (
	MetaRunID      = "run_id"
	MetaStepID     = "step_id"
	MetaCapability = "capability"
	MetaBranch     = "branch"
	MetaAttempt    = "attempt"
)

// Apply will merge the keys/values of the other metadata set into this one
func (m Metadata) Apply(other Metadata) Metadata {
	if len(other) == 0 {
		return m
	}
	res := maps.Clone(m)
	if res == nil {
		res = Metadata{}
	}
	maps.Copy(res, other)
	return res
}

func GetMetaString[T ~string](meta Metadata, key string) (T, bool) {
	var zero T
	val, ok := meta[key]
	if !ok {
		return zero, false
	}

	switch v := val.(type) {
	case T:
		if v == "" {
			return zero, false
		}
		return v, true
	case string:
		if v == "" {
			return zero, false
		}
		return T(v), true
	default:
		return zero, false
	}
}
