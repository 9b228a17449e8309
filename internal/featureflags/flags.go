// Package featureflags reads boolean kill switches from the environment.
//
// A flag named "disable_missed_sweep" is toggled with
// FLAG_DISABLE_MISSED_SWEEP=true.
package featureflags

import (
	"os"
	"strings"
)

const envPrefix = "FLAG_"

// Enabled reports whether the named flag is switched on. Accepted truthy
// values are 1, true, yes and on, case-insensitive. Unset flags are off.
func Enabled(name string) bool {
	raw, ok := os.LookupEnv(envPrefix + strings.ToUpper(name))
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
