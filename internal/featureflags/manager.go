// Package featureflags evaluates env-configured feature flags.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags read by the application.
const (
	// CachedProfiles serves traveler profiles through the Redis cache.
	CachedProfiles = "cached_profiles"
	// CachedDashboards serves dashboard rollups through the Redis cache.
	CachedDashboards = "cached_dashboards"
	// SwaggerUI exposes the API docs outside development.
	SwaggerUI = "swagger_ui"
)

// defaults apply when FEATURE_FLAGS does not mention a flag.
var defaults = map[string]string{
	CachedProfiles:   "on",
	CachedDashboards: "on",
	SwaggerUI:        "off",
}

type rule struct {
	raw     string
	on      bool
	percent int // -1 unless the rule is a rollout
}

// Manager evaluates feature flags defined in a key=value list.
// Example: "cached_profiles=on,cached_dashboards=25%,swagger_ui=off"
type Manager struct {
	rules map[string]rule
}

// NewManager parses a comma-separated flag list on top of the defaults.
// Malformed entries are skipped.
func NewManager(raw string) *Manager {
	m := &Manager{rules: make(map[string]rule, len(defaults))}
	for name, value := range defaults {
		m.rules[name] = parseRule(value)
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		m.rules[key] = parseRule(value)
	}
	return m
}

func parseRule(value string) rule {
	r := rule{raw: value, percent: -1}
	switch value {
	case "on", "true", "1":
		r.on = true
		return r
	case "off", "false", "0":
		return r
	}
	if pct, ok := strings.CutSuffix(value, "%"); ok {
		if n, err := strconv.Atoi(pct); err == nil {
			r.percent = min(max(n, 0), 100)
		}
	}
	return r
}

// Enabled reports whether a flag is on for a given user. Percentage rollouts
// are deterministic per (flag, user) and need a non-zero userID unless they
// are at 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	switch {
	case r.percent < 0:
		return r.on
	case r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// EnabledGlobally reports whether a flag is on for process-wide behaviour,
// where only fully rolled-out flags count.
func (m *Manager) EnabledGlobally(name string) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	return ok && (r.on || r.percent == 100)
}

// Raw returns a copy of the configured flag values.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
