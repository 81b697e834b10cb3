package service

import (
	"maps"
	"slices"
	"sync"
)

// listeners is a set of change callbacks. Callbacks run synchronously on
// the goroutine that made the change, after the container lock is released,
// and see changes in the order the container applied them. A callback may
// read its container but must not mutate it.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)

	turn      sync.Mutex
	turnCond  sync.Cond
	issued    uint64
	delivered uint64
}

func (l *listeners[T]) add(fn func(T)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// handOff releases the container lock through unlock and then notifies.
// The caller must hold the container lock: the change takes its place in
// line before the lock is released, so a later change cannot overtake it.
func (l *listeners[T]) handOff(unlock func(), change T) {
	l.turn.Lock()
	if l.turnCond.L == nil {
		l.turnCond.L = &l.turn
	}
	ticket := l.issued
	l.issued++
	l.turn.Unlock()

	unlock()

	l.turn.Lock()
	for l.delivered != ticket {
		l.turnCond.Wait()
	}
	l.turn.Unlock()

	defer func() {
		l.turn.Lock()
		l.delivered++
		l.turnCond.Broadcast()
		l.turn.Unlock()
	}()
	l.notify(change)
}

func (l *listeners[T]) notify(change T) {
	l.mu.Lock()
	ids := slices.Sorted(maps.Keys(l.fns))
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
