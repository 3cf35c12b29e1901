package patching

import "regexp"

// Rule rewrites every non-overlapping match of Match with Replace, which may
// reference capture groups ($1, ${1}).
type Rule struct {
	Name    string
	Match   *regexp.Regexp
	Replace string
}

// Apply runs the rule over text and reports how many matches were replaced.
func (r Rule) Apply(text string) (string, int) {
	n := len(r.Match.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	return r.Match.ReplaceAllString(text, r.Replace), n
}

// machineIDRule drops the primary expression of an async id getter so it
// always returns the fallback. The primary operand stops at the first `??`,
// so a single-fallback getter never matches again; a chained `a??b??c` loses
// one operand per run until only `c` is left.
func machineIDRule(fn string) Rule {
	return Rule{
		Name:    fn,
		Match:   regexp.MustCompile(`async ` + regexp.QuoteMeta(fn) + `\(\)\{return [^?]+\?\?\s*([^}]+)\}`),
		Replace: `async ` + fn + `(){return ${1}}`,
	}
}

// DefaultRules is the fixed, ordered rule list applied to the script.
func DefaultRules() []Rule {
	return []Rule{
		machineIDRule("getMachineId"),
		machineIDRule("getMacMachineId"),
	}
}
