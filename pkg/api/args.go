package api

import "maps"

type (
	// Args represents a map of named arguments passed to or from
	// capabilities
	Args map[Name]any

	// Name is a string identifier for arguments
	Name string
)

// Argument names used by the built-in capabilities
const (
	ArgGuests          Name = "guests"
	ArgAnalysis        Name = "analysis"
	ArgRequirement     Name = "requirement"
	ArgQuantity        Name = "quantity"
	ArgQuery           Name = "query"
	ArgContent         Name = "content"
	ArgResult          Name = "result"
	ArgResults         Name = "results"
	ArgApproved        Name = "approved"
	ArgFeedback        Name = "feedback"
	ArgChefs           Name = "chefs"
	ArgReport          Name = "report"
	ArgPath            Name = "path"
	ArgURL             Name = "url"
	ArgConfirmation    Name = "confirmation"
	ArgSpecializations Name = "specializations"
)

// Set creates a new Args with the specified name-value pair added
func (a Args) Set(name Name, value any) Args {
	if a == nil {
		return Args{name: value}
	}
	res := maps.Clone(a)
	res[name] = value
	return res
}

// GetString retrieves a string value from args, returning defaultValue if
// not found or wrong type
func (a Args) GetString(name Name, defaultValue string) string {
	val, ok := a[name]
	if !ok {
		return defaultValue
	}
	str, ok := val.(string)
	if !ok {
		return defaultValue
	}
	return str
}

// GetBool retrieves a boolean value from args, returning defaultValue if not
// found or wrong type
func (a Args) GetBool(name Name, defaultValue bool) bool {
	val, ok := a[name]
	if !ok {
		return defaultValue
	}
	b, ok := val.(bool)
	if !ok {
		return defaultValue
	}
	return b
}

// GetInt retrieves an integer value from args, returning defaultValue if not
// found or wrong type. Supports both int and float64 (converting from JSON
// numbers)
func (a Args) GetInt(name Name, defaultValue int) int {
	val, ok := a[name]
	if !ok {
		return defaultValue
	}
	if i, ok := val.(int); ok {
		return i
	}
	if f, ok := val.(float64); ok {
		return int(f)
	}
	return defaultValue
}

// GetStrings retrieves a string slice from args. Supports both []string and
// []any (converting from decoded JSON arrays)
func (a Args) GetStrings(name Name) ([]string, bool) {
	val, ok := a[name]
	if !ok {
		return nil, false
	}
	switch v := val.(type) {
	case []string:
		return v, true
	case []any:
		res := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			res = append(res, s)
		}
		return res, true
	default:
		return nil, false
	}
}
