package generic

// =============================================================================
// ENTITY INDEX - Natural key → persisted record, scoped to one batch
// =============================================================================

// Index maps natural keys to records. It is built once per reconciliation
// pass and mutated as rows are inserted, so later rows in the same batch
// see records created by earlier ones.
type Index[E any] map[Key]*E

// BuildIndex indexes existing records by key. If two records share a key
// the later one wins.
func BuildIndex[E any](records []*E, key func(*E) Key) Index[E] {
	idx := make(Index[E], len(records))
	for _, rec := range records {
		idx[key(rec)] = rec
	}
	return idx
}

// Lookup returns the record for key, if any.
func (idx Index[E]) Lookup(key Key) (*E, bool) {
	rec, ok := idx[key]
	return rec, ok
}

// Stager records pending writes until the surrounding unit of work commits.
type Stager[E any] interface {
	// Add stages a new record.
	Add(rec *E)
	// Update stages an existing record whose fields were changed in place.
	Update(rec *E)
}

// Upsert inserts rec under key, or overwrites the fields of the record
// already indexed under key. The existing record keeps its identity, so
// references held by other records stay valid.
//
// Returns true if a new record was created.
func (idx Index[E]) Upsert(key Key, rec *E, stage Stager[E]) (created bool) {
	if existing, ok := idx[key]; ok {
		*existing = *rec
		stage.Update(existing)
		return false
	}
	idx[key] = rec
	stage.Add(rec)
	return true
}
