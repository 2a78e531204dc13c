// Package search finds tasks by the words in their text.
//
// An Index is an in-memory bleve index kept in line with a task list
// snapshot. Each query word matches a whole analysed word or the start of
// one, so "mil" finds "Buy milk". All words must match.
//
//	idx, err := search.New()
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
//
//	hits, err := idx.Find(ctx, store.Tasks(), "milk", todo.FilterActive)
package search
