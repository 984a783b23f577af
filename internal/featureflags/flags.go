// Package featureflags gates optional public surfaces at runtime.
// Flags are declared as a comma-separated list in FEATURE_FLAGS,
// e.g. "contact_form=off,dashboard=on".
package featureflags

import "strings"

// Known flag names checked by the server.
const (
	ContactForm = "contact_form"
	Dashboard   = "dashboard"
)

// Set holds parsed flag values. The zero value treats every flag as unset.
type Set struct {
	flags map[string]string
}

// Parse builds a Set from a comma-separated key=value list. Malformed
// pairs are skipped rather than rejected so a typo never takes the
// whole config down.
func Parse(raw string) *Set {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return &Set{flags: out}
}

// Enabled reports whether a flag is on. Unset or unrecognized values
// fall back to the given default.
func (s *Set) Enabled(name string, fallback bool) bool {
	if s == nil {
		return fallback
	}
	value, ok := s.flags[normalize(name)]
	if !ok {
		return fallback
	}
	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}
	return fallback
}

// Raw returns a copy of the configured flag values.
func (s *Set) Raw() map[string]string {
	out := make(map[string]string, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
