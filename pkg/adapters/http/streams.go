package http

import "sync"

// StreamManager fans game events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // game ID -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a buffered channel for gameID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(gameID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[gameID]; !ok {
		sm.subscribers[gameID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[gameID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[gameID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, gameID)
			}
		}
	}
}

// Broadcast delivers msg to every subscriber of gameID. Slow clients with a
// full buffer miss the message.
func (sm *StreamManager) Broadcast(gameID string, msg string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	delivered := 0
	for ch := range sm.subscribers[gameID] {
		select {
		case ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of open streams for gameID.
func (sm *StreamManager) Subscribers(gameID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[gameID])
}
