// Package realtime fans progress and completion events out to all live
// sessions of a user. Delivery is best-effort and at-most-once per
// connected session; there is no queueing or replay. The database stays
// the source of truth for terminal state.
package realtime

import (
	"encoding/json"
	"log"
	"strconv"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// SendFunc returns true if data was successfully sent
type SendFunc func(data []byte) bool

type Session struct {
	send SendFunc
}

func NewSession(send SendFunc) *Session {
	return &Session{send: send}
}

// sessionList is needed as a user may be connected more than once
type sessionList []*Session

type Hub struct {
	users cmap.ConcurrentMap[string, sessionList]
}

func NewHub() *Hub {
	return &Hub{
		users: cmap.New[sessionList](),
	}
}

func userKey(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}

func (h *Hub) Add(userID uint64, s *Session) {
	h.users.Upsert(userKey(userID), sessionList{s}, func(exist bool, valueInMap, newValue sessionList) sessionList {
		if exist {
			return append(valueInMap, s)
		}
		return newValue
	})
}

func (h *Hub) Remove(userID uint64, s *Session) {
	key := userKey(userID)
	h.users.Upsert(key, sessionList{}, func(exist bool, valueInMap, newValue sessionList) sessionList {
		if !exist {
			return newValue
		}
		for _, other := range valueInMap {
			if other == s {
				continue
			}
			newValue = append(newValue, other)
		}
		return newValue
	})
	// Last session out drops the key so users don't accumulate forever
	h.users.RemoveCb(key, func(key string, sessions sessionList, exists bool) bool {
		return exists && len(sessions) == 0
	})
}

// SessionCount returns the number of live sessions for a user
func (h *Hub) SessionCount(userID uint64) int {
	sessions, ok := h.users.Get(userKey(userID))
	if !ok {
		return 0
	}
	return len(sessions)
}

// Publish delivers event to every session currently registered for the
// user. Users with no sessions receive nothing. A failed send never
// blocks delivery to the remaining sessions.
func (h *Hub) Publish(userID uint64, event interface{}) {
	sessions, ok := h.users.Get(userKey(userID))
	if !ok || len(sessions) == 0 {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("realtime: cannot marshal event: %v", err)
		return
	}
	for _, s := range sessions {
		s.send(data)
	}
}
