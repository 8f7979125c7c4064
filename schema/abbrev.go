package schema

import (
	"sort"
	"strings"
)

// maxPrefix bounds the plain word prefixes that count as abbreviations.
const maxPrefix = 4

// Abbreviator generates the set of short forms a schema or table name may be
// referred to by. It over-generates on purpose; the set is a recall aid for
// search, not a naming rule.
type Abbreviator struct {
	words map[string][]string
}

// NewAbbreviator returns an Abbreviator seeded with common database word
// abbreviations. Entries in extra are added to, not replacing, the defaults.
func NewAbbreviator(extra map[string][]string) *Abbreviator {
	words := map[string][]string{
		"account":        {"acct", "acc"},
		"address":        {"addr"},
		"administration": {"admin", "adm"},
		"amount":         {"amt"},
		"application":    {"app"},
		"attribute":      {"attr"},
		"config":         {"cfg", "conf"},
		"configuration":  {"cfg", "conf", "config"},
		"customer":       {"cust"},
		"database":       {"db"},
		"department":     {"dept"},
		"description":    {"desc"},
		"destination":    {"dest", "dst"},
		"document":       {"doc"},
		"employee":       {"emp"},
		"environment":    {"env"},
		"history":        {"hist"},
		"information":    {"info"},
		"management":     {"mgmt", "mgt"},
		"message":        {"msg"},
		"number":         {"num", "no"},
		"package":        {"pkg"},
		"parameter":      {"param", "prm"},
		"production":     {"prod"},
		"quantity":       {"qty"},
		"reference":      {"ref"},
		"report":         {"rpt"},
		"sequence":       {"seq"},
		"service":        {"svc"},
		"source":         {"src"},
		"statistics":     {"stats"},
		"system":         {"sys"},
		"temporary":      {"tmp", "temp"},
		"transaction":    {"txn", "tx"},
		"user":           {"usr"},
	}
	for w, abbrs := range extra {
		w = strings.ToLower(w)
		for _, a := range abbrs {
			words[w] = append(words[w], strings.ToLower(a))
		}
	}
	return &Abbreviator{words: words}
}

// Abbreviations returns the sorted, lower-cased abbreviation set of name.
//
// For a multi-word name (split on "_") the set holds the word initials and,
// for every word, its prefixes up to four characters, its vowel-stripped
// prefixes and its well-known short forms, each also prefixed by the initials
// of the preceding words. A single-word name additionally yields every prefix
// of its consonant-only form.
func (a *Abbreviator) Abbreviations(name string) []string {
	var words []string
	for _, w := range strings.Split(strings.ToLower(name), "_") {
		if w != "" {
			words = append(words, w)
		}
	}
	set := make(map[string]struct{})
	add := func(s string) {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	switch {
	case len(words) == 0:
		return nil
	case len(words) == 1:
		w := words[0]
		for _, c := range a.wordForms(w) {
			add(c)
		}
		consonants := stripVowels(w)
		for i := 1; i <= len(consonants); i++ {
			add(consonants[:i])
		}
	default:
		var initials strings.Builder
		for _, w := range words {
			initials.WriteByte(w[0])
		}
		add(initials.String())
		lead := ""
		for _, w := range words {
			for _, c := range a.wordForms(w) {
				add(c)
				add(lead + c)
			}
			lead += w[:1]
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// wordForms returns the short prefixes, vowel-stripped prefixes and
// well-known abbreviations of a single lower-cased word.
func (a *Abbreviator) wordForms(w string) []string {
	var forms []string
	for i := 1; i <= len(w) && i <= maxPrefix; i++ {
		forms = append(forms, w[:i])
	}
	skeleton := w[:1] + stripVowels(w[1:])
	for i := 1; i <= len(skeleton); i++ {
		forms = append(forms, skeleton[:i])
	}
	forms = append(forms, a.words[w]...)
	return forms
}

func stripVowels(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'a', 'e', 'i', 'o', 'u':
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func contains(set []string, s string) bool {
	i := sort.SearchStrings(set, s)
	return i < len(set) && set[i] == s
}
