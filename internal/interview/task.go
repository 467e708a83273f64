package interview

import "context"

// task is one outstanding model request. Its context is cancelled when the
// session is abandoned; a reply arriving for a task that is no longer current
// is dropped.
type task struct {
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// guard admits at most one task at a time. It is not safe for concurrent use;
// the owning Session serializes access.
type guard struct {
	seq uint64
	cur *task
}

func (g *guard) busy() bool { return g.cur != nil }

func (g *guard) admit(parent context.Context) (*task, bool) {
	if g.cur != nil {
		return nil, false
	}
	g.seq++
	ctx, cancel := context.WithCancel(parent)
	g.cur = &task{seq: g.seq, ctx: ctx, cancel: cancel}
	return g.cur, true
}

// finish releases t and reports whether it was still the current task.
func (g *guard) finish(t *task) bool {
	t.cancel()
	if g.cur == nil || g.cur.seq != t.seq {
		return false
	}
	g.cur = nil
	return true
}

func (g *guard) abort() {
	if g.cur == nil {
		return
	}
	g.cur.cancel()
	g.cur = nil
}
