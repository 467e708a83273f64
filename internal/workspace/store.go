package workspace

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMaxWorkspaces = 256

// Store keeps live workspaces in memory. The least recently used workspace
// is evicted once the bound is reached; its active session is abandoned.
type Store struct {
	cache *lru.Cache[string, *Workspace]
}

func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultMaxWorkspaces
	}
	cache, err := lru.NewWithEvict[string, *Workspace](size, func(_ string, ws *Workspace) {
		ws.abandonSession()
	})
	if err != nil {
		return nil, fmt.Errorf("workspace store: %w", err)
	}
	return &Store{cache: cache}, nil
}

func (s *Store) Get(id string) (*Workspace, bool) { return s.cache.Get(id) }
func (s *Store) Put(ws *Workspace)                { s.cache.Add(ws.ID, ws) }
func (s *Store) Remove(id string) bool            { return s.cache.Remove(id) }
func (s *Store) Len() int                         { return s.cache.Len() }
func (s *Store) IDs() []string                    { return s.cache.Keys() }
