package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/vinayprograms/todokit/todo"
)

// textAnalyzer splits on Unicode word boundaries and lowercases. It keeps
// stop words, so "the" in a query matches "the" in a task.
const textAnalyzer = "task_text"

const (
	statusActive = "active"
	statusDone   = "done"
)

// taskDocument is the indexed form of a task.
type taskDocument struct {
	Text   string `json:"text"`
	Status string `json:"status"` // "active" | "done"
}

func documentFor(t todo.Task) taskDocument {
	status := statusActive
	if t.Done {
		status = statusDone
	}
	return taskDocument{Text: t.Text, Status: status}
}

// Index is an in-memory full-text index over task text.
type Index struct {
	mu      sync.Mutex
	index   bleve.Index
	indexed map[string]taskDocument
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	m, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to build index mapping: %w", err)
	}
	index, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &Index{
		index:   index,
		indexed: make(map[string]taskDocument),
	}, nil
}

func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(textAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}

	taskMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = textAnalyzer

	statusFieldMapping := bleve.NewKeywordFieldMapping()

	taskMapping.AddFieldMappingsAt("text", textFieldMapping)
	taskMapping.AddFieldMappingsAt("status", statusFieldMapping)

	indexMapping.DefaultMapping = taskMapping
	indexMapping.DefaultAnalyzer = textAnalyzer

	return indexMapping, nil
}

// Sync brings the index in line with list. New and changed tasks are
// (re)indexed; tasks no longer in list are removed.
func (x *Index) Sync(list todo.List) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.syncLocked(list)
}

func (x *Index) syncLocked(list todo.List) error {
	batch := x.index.NewBatch()
	next := make(map[string]taskDocument, len(list))

	for _, t := range list {
		doc := documentFor(t)
		next[t.ID] = doc
		if prev, ok := x.indexed[t.ID]; ok && prev == doc {
			continue
		}
		if err := batch.Index(t.ID, doc); err != nil {
			return fmt.Errorf("index task %s: %w", t.ID, err)
		}
	}
	for id := range x.indexed {
		if _, ok := next[id]; !ok {
			batch.Delete(id)
		}
	}

	if batch.Size() > 0 {
		if err := x.index.Batch(batch); err != nil {
			return fmt.Errorf("apply index batch: %w", err)
		}
	}
	x.indexed = next
	return nil
}

// Find returns the tasks of list whose text matches every word of q and
// whose state passes f, in list order. q is split into words the same way
// task text is, so "e-mail" looks for "e" and "mail". An empty q returns
// todo.Filtered(list, f); a q with no words at all ("!!!") matches nothing.
func (x *Index) Find(ctx context.Context, list todo.List, q string, f todo.Filter) (todo.List, error) {
	if strings.TrimSpace(q) == "" {
		return todo.Filtered(list, f), nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.syncLocked(list); err != nil {
		return nil, err
	}
	words, err := x.queryWords(q)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 || len(list) == 0 {
		return todo.List{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(words, f), len(list), 0, false)
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make(map[string]struct{}, len(res.Hits))
	for _, hit := range res.Hits {
		hits[hit.ID] = struct{}{}
	}

	out := make(todo.List, 0, len(hits))
	for _, t := range list {
		if _, ok := hits[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// queryWords runs q through the text analyzer. Caller holds x.mu.
func (x *Index) queryWords(q string) ([]string, error) {
	analyzer := x.index.Mapping().AnalyzerNamed(textAnalyzer)
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer %s not registered", textAnalyzer)
	}
	var words []string
	seen := make(map[string]struct{})
	for _, tok := range analyzer.Analyze([]byte(q)) {
		w := string(tok.Term)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words, nil
}

// buildQuery requires every word as a whole word or a prefix, plus the
// status term for active and done filters.
func buildQuery(words []string, f todo.Filter) query.Query {
	musts := make([]query.Query, 0, len(words)+1)
	for _, w := range words {
		match := bleve.NewMatchQuery(w)
		match.SetField("text")
		prefix := bleve.NewPrefixQuery(w)
		prefix.SetField("text")
		musts = append(musts, bleve.NewDisjunctionQuery(match, prefix))
	}

	switch f {
	case todo.FilterActive, todo.FilterDone:
		status := bleve.NewTermQuery(string(f))
		status.SetField("status")
		musts = append(musts, status)
	}

	return bleve.NewConjunctionQuery(musts...)
}

// Len returns the number of indexed tasks.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.indexed)
}

// Close releases the index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}
