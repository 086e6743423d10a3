// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph runs workflows declared as named nodes connected by plain,
// join, and conditional edges. Execution proceeds in supersteps: every ready
// node runs concurrently, then the edges fired by the finished batch decide
// the next one. The state type S is shared by all nodes in a batch and is
// expected to be a pointer whose concurrent fields guard themselves.
package graph

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// End is the pseudo-node that terminates a path.
const End = "__end__"

// NodeFunc does one unit of work, mutating the shared state in place.
type NodeFunc[S any] func(ctx context.Context, state S) error

// CondFunc picks the next node from the current state. It must be a pure
// read; returning End terminates the path.
type CondFunc[S any] func(state S) string

// NodeEvent reports node lifecycle transitions to an observer.
type NodeEvent struct {
	Node    string
	Message string
	Phase   string // "start", "complete", "error"
	Err     error
}

type node[S any] struct {
	name    string
	message string
	fn      NodeFunc[S]
}

// Graph is a workflow under construction. Configure it with AddNode and the
// edge methods, then Compile.
type Graph[S any] struct {
	nodes    map[string]node[S]
	edges    map[string][]string
	joins    map[string][]string // join target -> required sources
	conds    map[string]CondFunc[S]
	entry    string
	breaks   map[string]bool
	maxSteps int
	errs     []error
}

// New creates an empty graph.
func New[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:  make(map[string]node[S]),
		edges:  make(map[string][]string),
		joins:  make(map[string][]string),
		conds:  make(map[string]CondFunc[S]),
		breaks: make(map[string]bool),
	}
}

// AddNode registers a named node. The message is surfaced in progress events.
func (g *Graph[S]) AddNode(name, message string, fn NodeFunc[S]) {
	if _, exists := g.nodes[name]; exists {
		g.errs = append(g.errs, fmt.Errorf("node %q added twice", name))
		return
	}
	g.nodes[name] = node[S]{name: name, message: message, fn: fn}
}

// AddEdge connects from to to. A node with several outgoing edges fans out
// to all of them in the next superstep.
func (g *Graph[S]) AddEdge(from, to string) {
	g.edges[from] = append(g.edges[from], to)
}

// AddJoinEdge connects every node in froms to to and makes to wait until all
// of them have finished since its last run. Use it for fan-in after a fan-out.
func (g *Graph[S]) AddJoinEdge(froms []string, to string) {
	for _, from := range froms {
		g.edges[from] = append(g.edges[from], to)
	}
	g.joins[to] = append([]string(nil), froms...)
}

// AddConditionalEdge routes from through cond. A node routed conditionally
// cannot also have plain outgoing edges.
func (g *Graph[S]) AddConditionalEdge(from string, cond CondFunc[S]) {
	if _, dup := g.conds[from]; dup {
		g.errs = append(g.errs, fmt.Errorf("node %q has two conditional edges", from))
		return
	}
	g.conds[from] = cond
}

// SetEntryPoint names the node the first superstep runs.
func (g *Graph[S]) SetEntryPoint(name string) {
	g.entry = name
}

// InterruptAfter suspends the run once the named node completes, handing a
// checkpoint back to the caller. Resume continues from the checkpoint.
func (g *Graph[S]) InterruptAfter(name string) {
	g.breaks[name] = true
}

// SetMaxSupersteps overrides the default ceiling of 100 supersteps.
func (g *Graph[S]) SetMaxSupersteps(n int) {
	g.maxSteps = n
}

// Compile validates the graph and returns a runnable form.
func (g *Graph[S]) Compile() (*Runnable[S], error) {
	if len(g.errs) > 0 {
		return nil, g.errs[0]
	}
	if g.entry == "" {
		return nil, fmt.Errorf("no entry point set")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("entry point %q is not a node", g.entry)
	}
	for from, tos := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("edge from unknown node %q", from)
		}
		if _, cond := g.conds[from]; cond {
			return nil, fmt.Errorf("node %q has both plain and conditional edges", from)
		}
		for _, to := range tos {
			if to == End {
				continue
			}
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("edge to unknown node %q", to)
			}
		}
	}
	for from := range g.conds {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("conditional edge from unknown node %q", from)
		}
	}
	for to, froms := range g.joins {
		for _, from := range froms {
			if _, ok := g.nodes[from]; !ok {
				return nil, fmt.Errorf("join on %q waits for unknown node %q", to, from)
			}
		}
	}
	maxSteps := g.maxSteps
	if maxSteps <= 0 {
		maxSteps = 100
	}
	return &Runnable[S]{g: g, maxSteps: maxSteps}, nil
}

// Runnable executes a compiled graph.
type Runnable[S any] struct {
	g        *Graph[S]
	maxSteps int

	// Observer, when set, receives an event at node start, completion,
	// and failure. Called from worker goroutines.
	Observer func(NodeEvent)
}

// Checkpoint captures where a suspended run stopped so it can be resumed.
type Checkpoint struct {
	next    []string
	pending map[string]map[string]bool
}

// Next lists the nodes the resumed run will execute first.
func (c *Checkpoint) Next() []string {
	return append([]string(nil), c.next...)
}

// Invoke runs the graph from the entry point. A nil checkpoint means the run
// finished; a non-nil one means it was suspended by InterruptAfter and can
// be passed to Resume after the caller has amended the state.
func (r *Runnable[S]) Invoke(ctx context.Context, state S) (*Checkpoint, error) {
	return r.run(ctx, state, []string{r.g.entry}, make(map[string]map[string]bool))
}

// Resume continues a run suspended at a checkpoint.
func (r *Runnable[S]) Resume(ctx context.Context, state S, cp *Checkpoint) (*Checkpoint, error) {
	if cp == nil {
		return nil, fmt.Errorf("resume requires a checkpoint")
	}
	return r.run(ctx, state, cp.next, cp.pending)
}

func (r *Runnable[S]) run(ctx context.Context, state S, frontier []string, pending map[string]map[string]bool) (*Checkpoint, error) {
	for step := 0; len(frontier) > 0; step++ {
		if step >= r.maxSteps {
			return nil, fmt.Errorf("superstep limit %d exceeded at %v", r.maxSteps, frontier)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := r.runBatch(ctx, state, frontier); err != nil {
			return nil, err
		}

		next, interrupted := r.advance(state, frontier, pending)
		if interrupted {
			return &Checkpoint{next: next, pending: pending}, nil
		}
		frontier = next
	}
	return nil, nil
}

func (r *Runnable[S]) runBatch(ctx context.Context, state S, batch []string) error {
	if len(batch) == 1 {
		return r.runNode(ctx, state, batch[0])
	}
	eg, ctx := errgroup.WithContext(ctx)
	for _, name := range batch {
		name := name
		eg.Go(func() error {
			return r.runNode(ctx, state, name)
		})
	}
	return eg.Wait()
}

func (r *Runnable[S]) runNode(ctx context.Context, state S, name string) error {
	n := r.g.nodes[name]
	r.notify(NodeEvent{Node: name, Message: n.message, Phase: "start"})
	if err := n.fn(ctx, state); err != nil {
		r.notify(NodeEvent{Node: name, Message: n.message, Phase: "error", Err: err})
		return fmt.Errorf("node %q: %w", name, err)
	}
	r.notify(NodeEvent{Node: name, Message: n.message, Phase: "complete"})
	return nil
}

// advance fires the edges of the finished batch and assembles the next
// frontier. Join targets enter the frontier only once every required source
// has fired since the target last ran.
func (r *Runnable[S]) advance(state S, finished []string, pending map[string]map[string]bool) (next []string, interrupted bool) {
	ready := make(map[string]bool)

	fire := func(from, to string) {
		if to == End {
			return
		}
		required, isJoin := r.g.joins[to]
		if !isJoin {
			ready[to] = true
			return
		}
		if pending[to] == nil {
			pending[to] = make(map[string]bool)
		}
		pending[to][from] = true
		for _, src := range required {
			if !pending[to][src] {
				return
			}
		}
		ready[to] = true
		delete(pending, to)
	}

	for _, name := range finished {
		if cond, ok := r.g.conds[name]; ok {
			fire(name, cond(state))
			continue
		}
		for _, to := range r.g.edges[name] {
			fire(name, to)
		}
	}

	next = make([]string, 0, len(ready))
	for name := range ready {
		next = append(next, name)
	}
	sort.Strings(next)

	for _, name := range finished {
		if r.g.breaks[name] {
			return next, true
		}
	}
	return next, false
}

func (r *Runnable[S]) notify(ev NodeEvent) {
	if r.Observer != nil {
		r.Observer(ev)
	}
}
