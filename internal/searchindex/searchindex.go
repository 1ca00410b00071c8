// Package searchindex implements the hand-rolled in-memory inverted
// index described in spec.md §4.6. No search-engine library appears
// anywhere in the retrieval pack, so this is a justified standard-library
// build: lower-cased token -> set of dataset ids, built once at API boot
// and never rebuilt at request time.
package searchindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

// Index is a read-only-after-build inverted index over ExternalData
// metadata.
type Index struct {
	mu      sync.RWMutex
	tokens  map[string]map[string]struct{} // token -> set of dataset ids
	titles  map[string]string              // dataset id -> title, for ranking ties
	blocked map[string]struct{}            // blacklisted dataset ids
}

// New builds an Index from catalog, applying whitelist/blacklist
// filtering (blacklisted ids are indexed but never returned by Search; an
// empty whitelist means "no restriction").
func New(catalog []model.ExternalData, whitelist, blacklist []string) *Index {
	idx := &Index{
		tokens:  make(map[string]map[string]struct{}),
		titles:  make(map[string]string),
		blocked: make(map[string]struct{}),
	}

	allowed := make(map[string]struct{}, len(whitelist))
	for _, id := range whitelist {
		allowed[id] = struct{}{}
	}
	for _, id := range blacklist {
		idx.blocked[id] = struct{}{}
	}

	for _, ds := range catalog {
		if len(allowed) > 0 {
			if _, ok := allowed[ds.ID]; !ok {
				continue
			}
		}
		idx.titles[ds.ID] = ds.Title
		idx.index(ds.ID, ds.Title)
		idx.index(ds.ID, ds.Description)
		idx.index(ds.ID, ds.Group)
		for _, values := range ds.SampleMetadata {
			for _, v := range values {
				idx.index(ds.ID, v)
			}
		}
	}

	return idx
}

func (idx *Index) index(datasetID, text string) {
	for _, tok := range tokenize(text) {
		set, ok := idx.tokens[tok]
		if !ok {
			set = make(map[string]struct{})
			idx.tokens[tok] = set
		}
		set[datasetID] = struct{}{}
	}
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}

// Search returns dataset ids ranked by the number of matched query tokens,
// highest first, excluding blacklisted ids.
func (idx *Index) Search(query string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scores := make(map[string]int)
	for _, tok := range tokenize(query) {
		for id := range idx.tokens[tok] {
			if _, blocked := idx.blocked[id]; blocked {
				continue
			}
			scores[id]++
		}
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}
