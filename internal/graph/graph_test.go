// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type trace struct {
	mu    sync.Mutex
	steps []string
	n     int
}

func (t *trace) visit(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, name)
}

func (t *trace) count(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := 0
	for _, s := range t.steps {
		if s == name {
			c++
		}
	}
	return c
}

func visiting(name string) NodeFunc[*trace] {
	return func(_ context.Context, s *trace) error {
		s.visit(name)
		return nil
	}
}

func TestLinearRun(t *testing.T) {
	g := New[*trace]()
	g.AddNode("a", "", visiting("a"))
	g.AddNode("b", "", visiting("b"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", End)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile = %v", err)
	}
	s := &trace{}
	cp, err := r.Invoke(context.Background(), s)
	if err != nil || cp != nil {
		t.Fatalf("Invoke = %v, %v", cp, err)
	}
	if got := strings.Join(s.steps, ","); got != "a,b" {
		t.Errorf("steps = %q", got)
	}
}

func TestConditionalLoopTerminates(t *testing.T) {
	g := New[*trace]()
	g.AddNode("work", "", func(_ context.Context, s *trace) error {
		s.visit("work")
		s.n++
		return nil
	})
	g.AddNode("done", "", visiting("done"))
	g.SetEntryPoint("work")
	g.AddConditionalEdge("work", func(s *trace) string {
		if s.n >= 3 {
			return "done"
		}
		return "work"
	})
	g.AddEdge("done", End)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile = %v", err)
	}
	s := &trace{}
	if _, err := r.Invoke(context.Background(), s); err != nil {
		t.Fatalf("Invoke = %v", err)
	}
	if s.count("work") != 3 || s.count("done") != 1 {
		t.Errorf("steps = %v, want work x3 then done", s.steps)
	}
}

func TestJoinWaitsForAllSources(t *testing.T) {
	// fan ranges over a short and a long branch; merge must run exactly
	// once, after both.
	g := New[*trace]()
	g.AddNode("fan", "", visiting("fan"))
	g.AddNode("short", "", visiting("short"))
	g.AddNode("long1", "", visiting("long1"))
	g.AddNode("long2", "", visiting("long2"))
	g.AddNode("merge", "", visiting("merge"))
	g.SetEntryPoint("fan")
	g.AddEdge("fan", "short")
	g.AddEdge("fan", "long1")
	g.AddEdge("long1", "long2")
	g.AddJoinEdge([]string{"short", "long2"}, "merge")
	g.AddEdge("merge", End)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile = %v", err)
	}
	s := &trace{}
	if _, err := r.Invoke(context.Background(), s); err != nil {
		t.Fatalf("Invoke = %v", err)
	}
	if s.count("merge") != 1 {
		t.Fatalf("merge ran %d times, want 1: %v", s.count("merge"), s.steps)
	}
	last := s.steps[len(s.steps)-1]
	if last != "merge" {
		t.Errorf("merge was not last: %v", s.steps)
	}
}

func TestFanOutRunsWholeBatch(t *testing.T) {
	g := New[*trace]()
	g.AddNode("fan", "", visiting("fan"))
	for _, name := range []string{"c1", "c2", "c3", "c4"} {
		g.AddNode(name, "", visiting(name))
		g.AddEdge("fan", name)
	}
	g.AddJoinEdge([]string{"c1", "c2", "c3", "c4"}, "merge")
	g.AddNode("merge", "", visiting("merge"))
	g.SetEntryPoint("fan")
	g.AddEdge("merge", End)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile = %v", err)
	}
	s := &trace{}
	if _, err := r.Invoke(context.Background(), s); err != nil {
		t.Fatalf("Invoke = %v", err)
	}
	for _, name := range []string{"c1", "c2", "c3", "c4"} {
		if s.count(name) != 1 {
			t.Errorf("%s ran %d times", name, s.count(name))
		}
	}
	if s.count("merge") != 1 {
		t.Errorf("merge ran %d times", s.count("merge"))
	}
}

func TestInterruptAndResume(t *testing.T) {
	g := New[*trace]()
	g.AddNode("draft", "", visiting("draft"))
	g.AddNode("review", "", visiting("review"))
	g.AddNode("publish", "", visiting("publish"))
	g.SetEntryPoint("draft")
	g.AddEdge("draft", "review")
	g.AddEdge("review", "publish")
	g.AddEdge("publish", End)
	g.InterruptAfter("review")

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile = %v", err)
	}
	s := &trace{}
	cp, err := r.Invoke(context.Background(), s)
	if err != nil {
		t.Fatalf("Invoke = %v", err)
	}
	if cp == nil {
		t.Fatal("expected a checkpoint at the interrupt")
	}
	if got := cp.Next(); len(got) != 1 || got[0] != "publish" {
		t.Errorf("checkpoint next = %v", got)
	}
	if s.count("publish") != 0 {
		t.Fatalf("publish ran before resume: %v", s.steps)
	}

	cp2, err := r.Resume(context.Background(), s, cp)
	if err != nil || cp2 != nil {
		t.Fatalf("Resume = %v, %v", cp2, err)
	}
	if got := strings.Join(s.steps, ","); got != "draft,review,publish" {
		t.Errorf("steps = %q", got)
	}
}

func TestNodeErrorStopsRun(t *testing.T) {
	boom := errors.New("boom")
	g := New[*trace]()
	g.AddNode("a", "", func(_ context.Context, _ *trace) error { return boom })
	g.AddNode("b", "", visiting("b"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", End)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile = %v", err)
	}
	s := &trace{}
	_, err = r.Invoke(context.Background(), s)
	if !errors.Is(err, boom) {
		t.Fatalf("Invoke = %v, want wrapped boom", err)
	}
	if s.count("b") != 0 {
		t.Errorf("b ran after upstream failure")
	}
}

func TestSuperstepCeiling(t *testing.T) {
	g := New[*trace]()
	g.AddNode("spin", "", visiting("spin"))
	g.SetEntryPoint("spin")
	g.AddEdge("spin", "spin")
	g.SetMaxSupersteps(5)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile = %v", err)
	}
	_, err = r.Invoke(context.Background(), &trace{})
	if err == nil || !strings.Contains(err.Error(), "superstep limit") {
		t.Fatalf("Invoke = %v, want superstep limit error", err)
	}
}

func TestCompileRejectsBadGraphs(t *testing.T) {
	t.Run("no entry", func(t *testing.T) {
		g := New[*trace]()
		g.AddNode("a", "", visiting("a"))
		if _, err := g.Compile(); err == nil {
			t.Error("Compile accepted a graph without an entry point")
		}
	})
	t.Run("edge to unknown node", func(t *testing.T) {
		g := New[*trace]()
		g.AddNode("a", "", visiting("a"))
		g.SetEntryPoint("a")
		g.AddEdge("a", "ghost")
		if _, err := g.Compile(); err == nil {
			t.Error("Compile accepted an edge to an unknown node")
		}
	})
	t.Run("mixed plain and conditional", func(t *testing.T) {
		g := New[*trace]()
		g.AddNode("a", "", visiting("a"))
		g.AddNode("b", "", visiting("b"))
		g.SetEntryPoint("a")
		g.AddEdge("a", "b")
		g.AddConditionalEdge("a", func(*trace) string { return End })
		g.AddEdge("b", End)
		if _, err := g.Compile(); err == nil {
			t.Error("Compile accepted mixed plain and conditional edges")
		}
	})
	t.Run("duplicate node", func(t *testing.T) {
		g := New[*trace]()
		g.AddNode("a", "", visiting("a"))
		g.AddNode("a", "", visiting("a"))
		g.SetEntryPoint("a")
		if _, err := g.Compile(); err == nil {
			t.Error("Compile accepted a duplicate node")
		}
	})
}

func TestObserverSeesLifecycle(t *testing.T) {
	g := New[*trace]()
	g.AddNode("a", "doing a", visiting("a"))
	g.SetEntryPoint("a")
	g.AddEdge("a", End)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile = %v", err)
	}
	var mu sync.Mutex
	var phases []string
	r.Observer = func(ev NodeEvent) {
		mu.Lock()
		phases = append(phases, ev.Phase)
		mu.Unlock()
		if ev.Message != "doing a" {
			t.Errorf("message = %q", ev.Message)
		}
	}
	if _, err := r.Invoke(context.Background(), &trace{}); err != nil {
		t.Fatalf("Invoke = %v", err)
	}
	if got := strings.Join(phases, ","); got != "start,complete" {
		t.Errorf("phases = %q", got)
	}
}
