package events

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroadcastToTCPClient(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })
	hub.Add(server)
	require.Equal(t, 1, hub.Stats().TCPClients)

	done := make(chan AdminEvent, 1)
	go func() {
		line, err := bufio.NewReader(client).ReadBytes('\n')
		if err != nil {
			close(done)
			return
		}
		var ev AdminEvent
		_ = json.Unmarshal(line, &ev)
		done <- ev
	}()

	hub.Broadcast(SourceTripped("hdhub4u", "auto-disabled after 5 consecutive failures"))

	select {
	case ev := <-done:
		require.Equal(t, TypeSourceTripped, ev.Type)
		require.Equal(t, "hdhub4u", ev.Source)
		require.Equal(t, "critical", ev.Severity)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestBroadcastDropsDeadClients(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	hub.Add(server)
	client.Close()
	server.Close()

	hub.Broadcast(SourceToggled("hdhub4u", false))
	require.Zero(t, hub.Stats().TCPClients)
}

func TestRemoveClosesConn(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })
	hub.Add(server)
	hub.Remove(server)

	require.Zero(t, hub.Stats().TCPClients)
	_, err := server.Write([]byte("x"))
	require.Error(t, err)
}
