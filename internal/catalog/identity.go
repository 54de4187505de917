package catalog

import (
	"github.com/google/uuid"
)

// identityMap is the bidirectional correlation between remote product UUIDs
// and the numeric aliases handed to the dashboards. Aliases are allocated
// monotonically and survive refetches, so a product keeps its number for the
// whole session. Callers hold the controller lock.
type identityMap struct {
	aliasByRemote map[uuid.UUID]int
	remoteByAlias map[int]uuid.UUID
	next          int
}

func newIdentityMap() *identityMap {
	return &identityMap{
		aliasByRemote: make(map[uuid.UUID]int),
		remoteByAlias: make(map[int]uuid.UUID),
		next:          1,
	}
}

// alias returns the existing alias for a remote id, allocating the next one
// on first sight.
func (m *identityMap) alias(remoteID uuid.UUID) int {
	if alias, ok := m.aliasByRemote[remoteID]; ok {
		return alias
	}
	alias := m.next
	m.next++
	m.aliasByRemote[remoteID] = alias
	m.remoteByAlias[alias] = remoteID
	return alias
}

// remote resolves an alias back to its remote id. Aliases created by the
// local-fallback append path have no remote counterpart and resolve false.
func (m *identityMap) remote(alias int) (uuid.UUID, bool) {
	id, ok := m.remoteByAlias[alias]
	return id, ok
}

// drop removes a correlation after a successful remote delete.
func (m *identityMap) drop(alias int) {
	if id, ok := m.remoteByAlias[alias]; ok {
		delete(m.aliasByRemote, id)
		delete(m.remoteByAlias, alias)
	}
}

// reserve moves the allocation cursor past an alias claimed outside the map,
// keeping future allocations unique.
func (m *identityMap) reserve(alias int) {
	if alias >= m.next {
		m.next = alias + 1
	}
}
