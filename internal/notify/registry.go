package notify

import (
	"net"
	"sync"
)

const (
	RegisterMessageType = "register"
	AlertMessageType    = "alert"
)

// RegisterMessage is what an operator console sends over UDP to start
// receiving alerts.
type RegisterMessage struct {
	Type       string `json:"type"`
	OperatorID string `json:"operator_id"`
}

// AlertMessage is the datagram pushed to every registered console when
// an admin sends a notification.
type AlertMessage struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	TargetType string `json:"target_type"`
}

type Console struct {
	OperatorID string
	Addr       *net.UDPAddr
}

// Registry tracks the UDP addresses of registered operator consoles.
type Registry struct {
	mu       sync.RWMutex
	consoles map[string]Console
}

func NewRegistry() *Registry {
	return &Registry{consoles: make(map[string]Console)}
}

func (r *Registry) Register(operatorID string, addr *net.UDPAddr) {
	if operatorID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.consoles[operatorID] = Console{OperatorID: operatorID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(operatorID string) {
	r.mu.Lock()
	delete(r.consoles, operatorID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Console {
	r.mu.RLock()
	defer r.mu.RUnlock()
	consoles := make([]Console, 0, len(r.consoles))
	for _, c := range r.consoles {
		consoles = append(consoles, c)
	}
	return consoles
}
