package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID      uint
	Name    string
	Updated time.Time
}

var meta = Meta[rec]{
	ID:        func(r rec) uint { return r.ID },
	UpdatedAt: func(r rec) time.Time { return r.Updated },
}

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func at(min int) time.Time { return t0.Add(time.Duration(min) * time.Minute) }

func names(rs []rec) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestUpsert_InsertReplaceAndIgnoreStale(t *testing.T) {
	s := New(meta)
	s.Dispatch(Upsert[rec]{Item: rec{ID: 1, Name: "v1", Updated: at(1)}})
	s.Dispatch(Upsert[rec]{Item: rec{ID: 1, Name: "v2", Updated: at(2)}})
	s.Dispatch(Upsert[rec]{Item: rec{ID: 1, Name: "stale", Updated: at(0)}})

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "v2", got.Name)
}

func TestReplace_StaleRefetchDoesNotOverwriteNewerUpdate(t *testing.T) {
	s := New(meta)
	s.Dispatch(Replace[rec]{Items: []rec{{ID: 1, Name: "old", Updated: at(0)}, {ID: 2, Name: "b", Updated: at(0)}}, FetchedAt: at(0)})

	// re-fetch sent at minute 1, optimistic save lands at minute 2, fetch returns after
	fetchedAt := at(1)
	s.Dispatch(Upsert[rec]{Item: rec{ID: 1, Name: "saved", Updated: at(2)}})
	s.Dispatch(Replace[rec]{Items: []rec{{ID: 1, Name: "old", Updated: at(0)}, {ID: 2, Name: "b2", Updated: at(1)}}, FetchedAt: fetchedAt})

	items, _ := s.Snapshot()
	assert.Equal(t, []string{"saved", "b2"}, names(items))
}

func TestReplace_DropsMissingUnlessCreatedAfterFetch(t *testing.T) {
	s := New(meta)
	s.Dispatch(Upsert[rec]{Item: rec{ID: 1, Name: "deleted elsewhere", Updated: at(0)}})
	s.Dispatch(Upsert[rec]{Item: rec{ID: 2, Name: "created locally", Updated: at(5)}})

	s.Dispatch(Replace[rec]{Items: []rec{{ID: 3, Name: "server", Updated: at(1)}}, FetchedAt: at(3)})

	items, _ := s.Snapshot()
	assert.Equal(t, []string{"server", "created locally"}, names(items))
}

func TestRemove_AndVersion(t *testing.T) {
	s := New(meta)
	_, v0 := s.Snapshot()
	s.Dispatch(Upsert[rec]{Item: rec{ID: 1, Name: "a"}})
	s.Dispatch(Remove[rec]{ID: 1})
	items, v := s.Snapshot()
	assert.Empty(t, items)
	assert.Equal(t, v0+2, v)
}

func TestReduce_DoesNotMutateState(t *testing.T) {
	state := []rec{{ID: 1, Name: "a", Updated: at(0)}}
	next := Reduce[rec](state, Upsert[rec]{Item: rec{ID: 1, Name: "b", Updated: at(1)}}, meta)
	assert.Equal(t, "a", state[0].Name)
	assert.Equal(t, "b", next[0].Name)
}
