package analyzer

import "strings"

// English stop words plus web noise. Words shorter than three letters
// never reach the filter (the tokenizer drops them), but they are kept
// here so the list reads as the standard one.
var stopWordList = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you",
	"your", "yours", "yourself", "yourselves", "he", "him", "his",
	"himself", "she", "her", "hers", "herself", "it", "its", "itself",
	"they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "a", "an", "the", "and",
	"but", "if", "or", "because", "as", "until", "while", "of", "at",
	"by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to",
	"from", "up", "down", "in", "out", "on", "off", "over", "under",
	"again", "further", "then", "once", "here", "there", "when",
	"where", "why", "how", "all", "any", "both", "each", "few", "more",
	"most", "other", "some", "such", "no", "nor", "not", "only", "own",
	"same", "so", "than", "too", "very", "can", "will", "just", "don",
	"should", "now", "also", "get", "got", "may", "much",
	"would", "could", "one", "two", "use", "used", "using",
	// web-specific noise
	"com", "www", "http", "https", "html", "php", "asp", "htm",
}

var stopWords = func() map[string]struct{} {
	m := make(map[string]struct{}, len(stopWordList))
	for _, w := range stopWordList {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}()
