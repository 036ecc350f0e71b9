package games

import "regexp"

// MaxSearchTerms caps how many search terms a single query may carry;
// extras are silently ignored.
const MaxSearchTerms = 5

// termPattern extracts search terms from a raw query. Terms are split
// on whitespace except where grouped by a pair of double quotes, which
// form a single term with the quotes stripped. An unpaired quote is
// not an error; it is simply skipped and the rest tokenizes normally,
// so `foo "bar baz` yields ["foo", "bar", "baz"].
var termPattern = regexp.MustCompile(`"(.+?)"|([^\s"]+)`)

// Tokenize splits a raw search query into terms.
func Tokenize(query string) []string {
	var terms []string
	for _, m := range termPattern.FindAllStringSubmatch(query, -1) {
		if m[1] != "" {
			terms = append(terms, m[1])
		} else if m[2] != "" {
			terms = append(terms, m[2])
		}
	}
	return terms
}
