package project

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGen hands out process-unique ids. Ids are monotonic ULIDs, so an id is
// never handed out twice even after the entity it named is deleted.
type IDGen struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewIDGen() *IDGen {
	return &IDGen{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *IDGen) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String())
}

// Entity returns a new id for an entity of the given category.
func (g *IDGen) Entity(c Category) string { return c.ops().idPrefix + "-" + g.next() }

func (g *IDGen) Stakeholder() string { return "s-" + g.next() }

func (g *IDGen) Workspace() string { return "ws-" + g.next() }
