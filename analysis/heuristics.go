package analysis

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// RiskLevel grades how sensitive a file looks judging by its name alone.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the lower-case label used in JSON output.
func (r RiskLevel) String() string {
	switch r {
	case RiskCritical:
		return "critical"
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	case RiskLow:
		return "low"
	default:
		return "none"
	}
}

type riskPattern struct {
	level RiskLevel
	re    *regexp.Regexp
}

// riskPatterns compiles the filename pattern table exactly once, on first
// use, and the result is never mutated afterwards. Patterns are evaluated
// top-down; the first match decides the level.
var riskPatterns = sync.OnceValue(func() []riskPattern {
	return []riskPattern{
		{RiskCritical, regexp.MustCompile(`^id_(rsa|dsa|ecdsa|ed25519)$`)},
		{RiskCritical, regexp.MustCompile(`\.(pem|key|p12|pfx)$`)},
		{RiskCritical, regexp.MustCompile(`^wallet\.dat$`)},
		{RiskCritical, regexp.MustCompile(`^(shadow|master\.key)$`)},
		{RiskHigh, regexp.MustCompile(`^\.env(\..+)?$`)},
		{RiskHigh, regexp.MustCompile(`credential|secret`)},
		{RiskHigh, regexp.MustCompile(`^\.(htpasswd|netrc|pgpass)$`)},
		{RiskHigh, regexp.MustCompile(`(^|[._-])token[s]?([._-]|\.|$)`)},
		{RiskMedium, regexp.MustCompile(`passw(or)?d`)},
		{RiskMedium, regexp.MustCompile(`\.(sql|dump)$`)},
		{RiskMedium, regexp.MustCompile(`backup|\.bak$`)},
		{RiskLow, regexp.MustCompile(`\.(conf|cfg|ini|kdbx)$`)},
		{RiskLow, regexp.MustCompile(`^\.(bash|zsh)_history$`)},
	}
})

// ClassifyRisk grades path by its base name. Unmatched names are RiskNone.
func ClassifyRisk(path string) RiskLevel {
	name := strings.ToLower(filepath.Base(path))
	for _, p := range riskPatterns() {
		if p.re.MatchString(name) {
			return p.level
		}
	}
	return RiskNone
}
