package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"

	"moviehub/pkg/models"
)

// Server accepts UDP registrations from operator consoles and pushes
// alert datagrams to every registered console.
type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger
	conn     *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	s.logger.Printf("UDP notify server listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("invalid UDP message from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.OperatorID, addr)
		s.logger.Printf("registered operator console %s (%s)", msg.OperatorID, addr)
	}
}

func (s *Server) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Broadcast pushes the notification to every registered console and
// returns how many were reached.
func (s *Server) Broadcast(n models.Notification) int {
	if s.conn == nil {
		s.logger.Printf("UDP notify server not running")
		return 0
	}
	payload, err := json.Marshal(AlertMessage{
		Type:       AlertMessageType,
		ID:         n.ID,
		Title:      n.Title,
		Message:    n.Message,
		TargetType: n.TargetType,
	})
	if err != nil {
		s.logger.Printf("failed to marshal alert: %v", err)
		return 0
	}

	sent := 0
	for _, console := range s.registry.Snapshot() {
		if s.sendWithRetry(console, payload) {
			sent++
		}
	}
	return sent
}

func (s *Server) sendWithRetry(console Console, payload []byte) bool {
	if err := s.sendOnce(console, payload); err == nil {
		return true
	}
	if err := s.sendOnce(console, payload); err != nil {
		s.logger.Printf("failed to notify operator %s at %s: %v", console.OperatorID, console.Addr, err)
		s.registry.Remove(console.OperatorID)
		return false
	}
	return true
}

func (s *Server) sendOnce(console Console, payload []byte) error {
	if console.Addr == nil {
		return errors.New("missing console address")
	}
	_, err := s.conn.WriteToUDP(payload, console.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.OperatorID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
