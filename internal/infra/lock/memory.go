package lock

import (
	"context"
	"sync"

	"reaction-rating-bot/internal/domain"
)

// Memory — блокировки по ключу внутри одного процесса.
type Memory struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem  chan struct{}
	refs int
}

var _ domain.ChannelLocker = (*Memory)(nil)

// NewMemory создаёт локальный менеджер блокировок.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]*slot)}
}

// Acquire ждёт освобождения ключа или отмены контекста.
func (m *Memory) Acquire(ctx context.Context, key string) (domain.ReleaseFunc, error) {
	s := m.ref(key)
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		m.unref(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.sem
			m.unref(key)
		})
	}, nil
}

func (m *Memory) ref(key string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	return s
}

func (m *Memory) unref(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
