package task

import (
	"context"
	"sync"
	"time"
)

// Group tracks pending tasks by key so all work for a key can be cancelled
// together.
type Group struct {
	mu    sync.Mutex
	tasks map[string]map[*Task]struct{}
}

func NewGroup() *Group {
	return &Group{tasks: make(map[string]map[*Task]struct{})}
}

// After schedules fn under key. See After.
func (g *Group) After(parent context.Context, key string, d time.Duration, fn func(ctx context.Context)) *Task {
	t := After(parent, d, fn)

	g.mu.Lock()
	set, ok := g.tasks[key]
	if !ok {
		set = make(map[*Task]struct{})
		g.tasks[key] = set
	}
	set[t] = struct{}{}
	g.mu.Unlock()

	go func() {
		<-t.Done()
		g.mu.Lock()
		defer g.mu.Unlock()
		if set, ok := g.tasks[key]; ok {
			delete(set, t)
			if len(set) == 0 {
				delete(g.tasks, key)
			}
		}
	}()
	return t
}

// Cancel stops every pending task of key and returns how many were
// prevented from running.
func (g *Group) Cancel(key string) int {
	g.mu.Lock()
	pending := make([]*Task, 0, len(g.tasks[key]))
	for t := range g.tasks[key] {
		pending = append(pending, t)
	}
	g.mu.Unlock()

	n := 0
	for _, t := range pending {
		if t.Cancel() {
			n++
		}
	}
	return n
}

func (g *Group) Pending(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks[key])
}

// Close cancels all tasks and waits for them to finish.
func (g *Group) Close() {
	g.mu.Lock()
	all := make([]*Task, 0)
	for _, set := range g.tasks {
		for t := range set {
			all = append(all, t)
		}
	}
	g.mu.Unlock()

	for _, t := range all {
		t.Cancel()
	}
	for _, t := range all {
		t.Wait()
	}
}
