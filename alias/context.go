package alias

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AtomPrefix starts every alias allocated by the declaration cache.
const AtomPrefix = "x"

// decl is the fully resolved declaration tuple used as cache key.
type decl struct {
	placement string
	selector  string
	property  string
	value     string
}

// Context is the compilation context: it owns the global append-only
// declaration cache and the atom counter. One context is normally created per
// process (or per isolated build) and passed explicitly to compilers.
// Context is safe for concurrent use.
type Context struct {
	mu      sync.Mutex
	id      uuid.UUID
	entries map[decl]string
	counter uint64
	log     *zap.Logger
}

// NewContext creates empty compilation context.
func NewContext(log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	return &Context{
		id:      id,
		entries: make(map[decl]string),
		log:     log.Named("alias").With(zap.String("context", id.String())),
	}
}

// ID identifies context in logs.
func (c *Context) ID() string {
	return c.id.String()
}

// Len returns number of cached declarations.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Lookup returns alias previously interned for declaration tuple.
func (c *Context) Lookup(placement, selector, property, value string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[decl{placement, selector, property, value}]
	return a, ok
}

// Intern returns alias for declaration tuple, allocating and recording a new
// one if tuple was never seen in this context. Second value is true for newly
// allocated aliases.
func (c *Context) Intern(placement, selector, property, value string) (string, bool) {
	t := c.Begin()
	defer t.Commit()
	return t.Intern(placement, selector, property, value)
}

// Begin starts transaction. Context stays locked until transaction is either
// committed or rolled back, so a whole compilation observes and mutates the
// cache atomically.
func (c *Context) Begin() *Txn {
	c.mu.Lock()
	return &Txn{ctx: c, pending: make(map[decl]string), mark: c.counter}
}

// Txn accumulates cache entries of a single compilation.
type Txn struct {
	ctx     *Context
	pending map[decl]string
	mark    uint64
	done    bool
}

// Intern returns committed or pending alias for tuple or allocates a fresh one.
func (t *Txn) Intern(placement, selector, property, value string) (string, bool) {
	if t.done {
		panic("alias: use of finished transaction")
	}
	k := decl{placement, selector, property, value}
	if a, ok := t.ctx.entries[k]; ok {
		return a, false
	}
	if a, ok := t.pending[k]; ok {
		return a, false
	}
	a := AtomPrefix + strconv.FormatUint(t.ctx.counter, 36)
	t.ctx.counter++
	t.pending[k] = a
	return a, true
}

// Commit publishes pending entries and releases context. It returns number of
// entries added.
func (t *Txn) Commit() int {
	if t.done {
		return 0
	}
	t.done = true
	defer t.ctx.mu.Unlock()

	for k, a := range t.pending {
		t.ctx.entries[k] = a
	}
	if len(t.pending) > 0 {
		t.ctx.log.Debug("Declarations interned", zap.Int("added", len(t.pending)), zap.Int("total", len(t.ctx.entries)))
	}
	return len(t.pending)
}

// Rollback drops pending entries, restores atom counter and releases context.
// Calling Rollback after Commit does nothing, so it may be deferred.
func (t *Txn) Rollback() {
	if t.done {
		return
	}
	t.done = true
	defer t.ctx.mu.Unlock()

	t.ctx.counter = t.mark
	if len(t.pending) > 0 {
		t.ctx.log.Debug("Declarations discarded", zap.Int("dropped", len(t.pending)))
	}
}
