package identity

import "sync"

// listener は1つの購読登録。
// 通知はキューに積まれ、専用のgoroutineが1件ずつ順番に配信する。
type listener struct {
	fn func(*AuthorityUser)

	mu      sync.Mutex
	queue   []*AuthorityUser
	running bool
	closed  bool
}

func (l *listener) enqueue(u *AuthorityUser) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.queue = append(l.queue, copyUser(u))
	if !l.running {
		l.running = true
		go l.drain()
	}
}

func (l *listener) drain() {
	for {
		l.mu.Lock()
		if l.closed || len(l.queue) == 0 {
			l.running = false
			l.mu.Unlock()
			return
		}
		next := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.fn(next)
	}
}

func (l *listener) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.queue = nil
}

// listenerSet は購読登録の集合。
type listenerSet struct {
	mu    sync.Mutex
	items map[*listener]struct{}
}

func (s *listenerSet) add(fn func(*AuthorityUser)) *listener {
	l := &listener{fn: fn}
	s.mu.Lock()
	if s.items == nil {
		s.items = make(map[*listener]struct{})
	}
	s.items[l] = struct{}{}
	s.mu.Unlock()
	return l
}

func (s *listenerSet) remove(l *listener) {
	s.mu.Lock()
	delete(s.items, l)
	s.mu.Unlock()
	l.close()
}

// broadcast は全登録に状態を通知する。配信は非同期で、呼び出し側をブロックしない。
func (s *listenerSet) broadcast(u *AuthorityUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for l := range s.items {
		l.enqueue(u)
	}
}
