package auditor

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords excluded from keyword extraction.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "a": {}, "for": {}, "is": {}, "on": {}, "with": {}, "as": {},
	"by": {}, "at": {}, "from": {}, "that": {}, "this": {}, "it": {}, "an": {}, "be": {}, "or": {}, "are": {}, "was": {},
	"will": {}, "has": {}, "have": {}, "had": {}, "but": {}, "not": {}, "your": {}, "you": {}, "we": {}, "our": {},
	"can": {}, "all": {}, "more": {}, "how": {}, "what": {}, "why": {}, "about": {},
}

// TopKeywords returns the top n keywords by frequency, ignoring
// stopwords and short tokens. Ties break alphabetically so the result
// is deterministic; discovery relies on that for its fallback query.
func TopKeywords(text string, n int) []string {
	freq := map[string]int{}
	token := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
	for _, w := range strings.FieldsFunc(strings.ToLower(text), token) {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		freq[w]++
	}

	type kv struct {
		K string
		V int
	}
	list := make([]kv, 0, len(freq))
	for k, v := range freq {
		list = append(list, kv{k, v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].V == list[j].V {
			return list[i].K < list[j].K
		}
		return list[i].V > list[j].V
	})

	if n > len(list) {
		n = len(list)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, list[i].K)
	}
	return out
}
