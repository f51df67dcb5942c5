package suggest

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// HeadlineIndex is a prefix index over the words of suggestion headlines,
// backing the search op and query matching against the Next scope. Each
// trie item is the set of suggestion IDs whose headline contains that
// word.
type HeadlineIndex struct {
	trie *patricia.Trie
}

// NewHeadlineIndex creates an empty index.
func NewHeadlineIndex() *HeadlineIndex {
	return &HeadlineIndex{trie: patricia.NewTrie()}
}

// Tokenize splits text into lowercase alphanumeric words.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Insert indexes every headline word under the suggestion ID.
func (ix *HeadlineIndex) Insert(suggestionID, headline string) {
	for _, word := range Tokenize(headline) {
		prefix := patricia.Prefix(word)
		if item := ix.trie.Get(prefix); item != nil {
			item.(map[string]bool)[suggestionID] = true
			continue
		}
		ix.trie.Insert(prefix, map[string]bool{suggestionID: true})
	}
}

// Remove drops the suggestion ID from every word it was indexed under,
// deleting words that no longer map to any suggestion.
func (ix *HeadlineIndex) Remove(suggestionID, headline string) {
	for _, word := range Tokenize(headline) {
		prefix := patricia.Prefix(word)
		item := ix.trie.Get(prefix)
		if item == nil {
			continue
		}
		ids := item.(map[string]bool)
		delete(ids, suggestionID)
		if len(ids) == 0 {
			ix.trie.Delete(prefix)
		}
	}
}

// Match returns the suggestion IDs whose headline has a word starting
// with any token of the query. An empty query matches nothing.
func (ix *HeadlineIndex) Match(query string) map[string]bool {
	matched := make(map[string]bool)
	for _, token := range Tokenize(query) {
		err := ix.trie.VisitSubtree(patricia.Prefix(token), func(p patricia.Prefix, item patricia.Item) error {
			for id := range item.(map[string]bool) {
				matched[id] = true
			}
			return nil
		})
		if err != nil {
			log.Errorf("Error visiting headline index subtree: %v", err)
		}
	}
	return matched
}
