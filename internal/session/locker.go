package session

import "sync"

// Locker serialises work per chat id in reservation order. Entries are dropped
// once no ticket holds or waits on them.
type Locker struct {
	mu    sync.Mutex
	locks map[int64]*chatLock
}

type chatLock struct {
	held    bool
	waiters []chan struct{}
}

// Ticket is a reserved turn for one chat
type Ticket struct {
	locker *Locker
	chatID int64
	ready  chan struct{}
	once   sync.Once
}

// NewLocker creates a keyed FIFO lock
func NewLocker() *Locker {
	return &Locker{locks: make(map[int64]*chatLock)}
}

// Reserve queues a turn for the chat without blocking. Turns are granted in
// the order Reserve was called.
func (l *Locker) Reserve(chatID int64) *Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, exists := l.locks[chatID]
	if !exists {
		lock = &chatLock{}
		l.locks[chatID] = lock
	}

	t := &Ticket{locker: l, chatID: chatID, ready: make(chan struct{})}
	if lock.held {
		lock.waiters = append(lock.waiters, t.ready)
	} else {
		lock.held = true
		close(t.ready)
	}
	return t
}

// Lock blocks until the chat is free and returns the matching unlock func
func (l *Locker) Lock(chatID int64) func() {
	return l.Reserve(chatID).Wait()
}

// Wait blocks until the turn comes and returns the unlock func
func (t *Ticket) Wait() func() {
	<-t.ready
	return func() { t.once.Do(t.release) }
}

// release hands the chat to the next waiter
func (t *Ticket) release() {
	l := t.locker
	l.mu.Lock()
	defer l.mu.Unlock()

	lock := l.locks[t.chatID]
	if len(lock.waiters) > 0 {
		next := lock.waiters[0]
		lock.waiters = lock.waiters[1:]
		close(next)
		return
	}
	delete(l.locks, t.chatID)
}

// Size returns the number of tracked chats
func (l *Locker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
