// Package stats is the read side: aggregation queries, keyword and mention
// extraction, and the burst/silence anomaly detectors.
package stats

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ChatPulse/ChatPulse/internal/config"
)

var mentionRe = regexp.MustCompile(`@(\d{5,12})`)

// Tokenize splits text into significant words. Latin/digit runs are kept
// whole (lowercased); CJK runs are segmented into overlapping bigrams, with
// a lone character kept as-is. Stop words and words shorter than the
// configured minimum are dropped.
func Tokenize(text string, kw config.KeywordConfig) []string {
	if text == "" {
		return nil
	}
	stop := make(map[string]struct{}, len(kw.StopWords))
	for _, w := range kw.StopWords {
		stop[w] = struct{}{}
	}

	var out []string
	emit := func(word string) {
		if word == "" || len([]rune(word)) < kw.MinWordLength {
			return
		}
		if _, skip := stop[word]; skip {
			return
		}
		out = append(out, word)
	}

	var latin []rune
	var cjk []rune
	flushLatin := func() {
		if len(latin) > 0 {
			emit(strings.ToLower(string(latin)))
			latin = latin[:0]
		}
	}
	flushCJK := func() {
		switch {
		case len(cjk) == 1:
			emit(string(cjk))
		case len(cjk) > 1:
			for i := 0; i+1 < len(cjk); i++ {
				emit(string(cjk[i : i+2]))
			}
		}
		cjk = cjk[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushLatin()
			cjk = append(cjk, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushCJK()
			latin = append(latin, r)
		default:
			flushLatin()
			flushCJK()
		}
	}
	flushLatin()
	flushCJK()
	return out
}

// ExtractMentions returns every @<5-12 digit id> occurrence in order.
func ExtractMentions(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
