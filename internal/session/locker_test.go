package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocker_SerialisesSameChat(t *testing.T) {
	l := NewLocker()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(7)
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.Size())
}

func TestLocker_DifferentChatsDoNotBlock(t *testing.T) {
	l := NewLocker()

	unlock := l.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := l.Lock(2)
		u()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on chat 2 blocked by chat 1")
	}
}

func TestLocker_UnlockIsIdempotent(t *testing.T) {
	l := NewLocker()

	unlock := l.Lock(1)
	unlock()
	unlock()

	assert.Equal(t, 0, l.Size())

	again := l.Lock(1)
	again()
}

func TestLocker_GrantsTurnsInReservationOrder(t *testing.T) {
	l := NewLocker()

	first := l.Reserve(3)
	tickets := make([]*Ticket, 5)
	for i := range tickets {
		tickets[i] = l.Reserve(3)
	}

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	// start waiters in reverse so goroutine scheduling cannot explain the order
	for i := len(tickets) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := tickets[i].Wait()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			unlock()
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	first.Wait()()
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, 0, l.Size())
}
