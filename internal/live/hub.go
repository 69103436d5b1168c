// Package live pushes freshly created notifications to connected clients over
// server-sent events and WebSocket.
package live

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/metrics"
)

const (
	EventNotification = "notification"
	EventConnected    = "connected"

	sendBuffer = 32
)

// Event is the envelope every subscriber receives.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Subscription is one connected client. Events arrive on C until Close is called.
type Subscription struct {
	UserID      int64
	AccountType string

	send chan []byte
	hub  *Hub
	once sync.Once
}

func (s *Subscription) C() <-chan []byte {
	return s.send
}

func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unregister(s) })
}

// Hub fans events out to subscribers keyed by user id. It satisfies
// notification.Broadcaster.
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]map[*Subscription]struct{}
	log  *zap.Logger
}

func NewHub(l *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[int64]map[*Subscription]struct{}),
		log:  logger.OrNop(l),
	}
}

// Subscribe registers a client. A user may hold several subscriptions at once,
// one per open tab or device.
func (h *Hub) Subscribe(userID int64, accountType string) *Subscription {
	s := &Subscription{
		UserID:      userID,
		AccountType: accountType,
		send:        make(chan []byte, sendBuffer),
		hub:         h,
	}

	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	metrics.LiveSubscribers.Inc()
	return s
}

func (h *Hub) unregister(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.UserID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.UserID)
	}
	close(s.send)
	metrics.LiveSubscribers.Dec()
}

// BroadcastToUser delivers to the user's subscriptions of the given account type.
// An empty account type matches every subscription of the user.
func (h *Hub) BroadcastToUser(userID int64, accountType string, payload any) {
	data, ok := h.encode(payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[userID] {
		if accountType != "" && s.AccountType != accountType {
			continue
		}
		h.offer(s, data)
	}
}

// BroadcastToAccountType delivers to every subscription of an account type.
func (h *Hub) BroadcastToAccountType(accountType string, payload any) {
	data, ok := h.encode(payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.subs {
		for s := range set {
			if s.AccountType == accountType {
				h.offer(s, data)
			}
		}
	}
}

// Count returns the number of open subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}

func (h *Hub) encode(payload any) ([]byte, bool) {
	data, err := json.Marshal(Event{Type: EventNotification, Payload: payload})
	if err != nil {
		h.log.Warn("live event encode failed", zap.Error(err))
		return nil, false
	}
	return data, true
}

// offer never blocks; a client that stops reading loses events instead of
// stalling the sender.
func (h *Hub) offer(s *Subscription, data []byte) {
	select {
	case s.send <- data:
	default:
		h.log.Debug("live subscriber too slow, dropping event", zap.Int64("user_id", s.UserID))
	}
}
