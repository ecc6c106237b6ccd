package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/types"
)

// SelectionRules matches inventory entries against patterns of the form
// `name`, `name*`, `*`, or any of those prefixed with `method:` (for
// example `winget:Microsoft.*` or `manual:*`). Matching is case-insensitive
// and is tested against every key the caller supplies (display name and
// package identifiers).
type SelectionRules struct {
	Patterns         []string
	exactByMethod    map[types.InstallMethod]map[string]struct{}
	exactAny         map[string]struct{}
	prefixByMethod   map[types.InstallMethod][]string
	prefixAny        []string
	wildcardByMethod map[types.InstallMethod]bool
	wildcardAny      bool
}

func NewSelectionRules(patterns []string) (SelectionRules, error) {
	rules := SelectionRules{Patterns: append([]string(nil), patterns...)}
	if err := rules.compile(); err != nil {
		return SelectionRules{}, err
	}
	return rules, nil
}

func (r SelectionRules) Matches(method types.InstallMethod, keys ...string) bool {
	if r.wildcardAny || r.wildcardByMethod[method] {
		return true
	}
	for _, key := range keys {
		normalized := normalizeKey(key)
		if normalized == "" {
			continue
		}
		if _, ok := r.exactAny[normalized]; ok {
			return true
		}
		if _, ok := r.exactByMethod[method][normalized]; ok {
			return true
		}
		for _, prefix := range r.prefixAny {
			if strings.HasPrefix(normalized, prefix) {
				return true
			}
		}
		for _, prefix := range r.prefixByMethod[method] {
			if strings.HasPrefix(normalized, prefix) {
				return true
			}
		}
	}
	return false
}

type patternKind int

const (
	patternExact patternKind = iota
	patternPrefix
	patternWildcard
	patternInvalid
)

type parsedPattern struct {
	method *types.InstallMethod
	kind   patternKind
	name   string
}

func (r *SelectionRules) compile() error {
	r.exactByMethod = map[types.InstallMethod]map[string]struct{}{}
	r.exactAny = map[string]struct{}{}
	r.prefixByMethod = map[types.InstallMethod][]string{}
	r.prefixAny = nil
	r.wildcardByMethod = map[types.InstallMethod]bool{}
	r.wildcardAny = false
	for _, pattern := range r.Patterns {
		parsed, ok := parsePattern(pattern)
		if !ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid selection pattern: %q", pattern))
		}
		switch parsed.kind {
		case patternWildcard:
			if parsed.method == nil {
				r.wildcardAny = true
			} else {
				r.wildcardByMethod[*parsed.method] = true
			}
		case patternExact:
			if parsed.method == nil {
				r.exactAny[parsed.name] = struct{}{}
				continue
			}
			if r.exactByMethod[*parsed.method] == nil {
				r.exactByMethod[*parsed.method] = map[string]struct{}{}
			}
			r.exactByMethod[*parsed.method][parsed.name] = struct{}{}
		case patternPrefix:
			if parsed.method == nil {
				r.prefixAny = append(r.prefixAny, parsed.name)
			} else {
				r.prefixByMethod[*parsed.method] = append(r.prefixByMethod[*parsed.method], parsed.name)
			}
		}
	}
	return nil
}

func parsePattern(pattern string) (parsedPattern, bool) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return parsedPattern{kind: patternInvalid}, false
	}
	if trimmed == "*" {
		return parsedPattern{kind: patternWildcard}, true
	}
	if head, tail, found := strings.Cut(trimmed, ":"); found {
		method, ok := parseMethodToken(head)
		if !ok {
			return parsedPattern{kind: patternInvalid}, false
		}
		name, kind := parseNamePattern(tail)
		if kind == patternInvalid {
			return parsedPattern{kind: patternInvalid}, false
		}
		return parsedPattern{method: &method, kind: kind, name: name}, true
	}
	name, kind := parseNamePattern(trimmed)
	if kind == patternInvalid {
		return parsedPattern{kind: patternInvalid}, false
	}
	return parsedPattern{kind: kind, name: name}, true
}

func parseMethodToken(token string) (types.InstallMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "winget":
		return types.InstallMethodWinget, true
	case "chocolatey", "choco":
		return types.InstallMethodChocolatey, true
	case "store":
		return types.InstallMethodStore, true
	case "manual":
		return types.InstallMethodManual, true
	default:
		return "", false
	}
}

func parseNamePattern(value string) (string, patternKind) {
	pattern := normalizeKey(value)
	if pattern == "" {
		return "", patternInvalid
	}
	if pattern == "*" {
		return "", patternWildcard
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		if prefix == "" || strings.Contains(prefix, "*") {
			return "", patternInvalid
		}
		return prefix, patternPrefix
	}
	if strings.Contains(pattern, "*") {
		return "", patternInvalid
	}
	return pattern, patternExact
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
