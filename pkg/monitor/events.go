package monitor

import (
	"encoding/json"

	"github.com/powerpolicy/powermgr-go/pkg/log"
)

// Log broadcasts event to every connected event client.
func (s *Server) Log(event log.Event) {
	s.mu.Lock()
	if len(s.clients) == 0 {
		s.mu.Unlock()
		return
	}
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	data, err := json.Marshal(newEventMessage(event))
	if err != nil {
		s.debugLog("encode event", "error", err)
		return
	}

	for _, c := range clients {
		if !c.enqueue(data) {
			s.debugLog("dropping slow event client", "remote", c.conn.RemoteAddr().String())
			s.removeClient(c)
		}
	}
}

var _ log.Logger = (*Server)(nil)
