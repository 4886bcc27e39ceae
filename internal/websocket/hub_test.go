// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/safestride/safestride/internal/flags"
)

// newTestClient builds a client without a network connection. Broadcast
// paths only touch the id and send channel.
func newTestClient(buffer int) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		send: make(chan Message, buffer),
	}
}

func TestHubRegisterAndBroadcastFlag(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- hub.RunWithContext(ctx)
	}()

	client := newTestClient(4)
	hub.Register <- client

	// Wait for registration to be processed
	deadline := time.Now().Add(time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered within deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}

	flag := &flags.Flag{
		ID:       "flag-1",
		UserID:   "alice",
		Severity: flags.SeverityHigh,
	}
	hub.BroadcastFlag(flag)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeFlag {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeFlag)
		}
		got, ok := msg.Data.(*flags.Flag)
		if !ok {
			t.Fatalf("message data has type %T, want *flags.Flag", msg.Data)
		}
		if got.ID != "flag-1" {
			t.Errorf("flag ID = %q, want %q", got.ID, "flag-1")
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast did not reach client")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunWithContext returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after context cancel")
	}

	if count := hub.GetClientCount(); count != 0 {
		t.Errorf("client count after shutdown = %d, want 0", count)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	slow := newTestClient(0)
	fast := newTestClient(4)
	hub.clients[slow] = true
	hub.clients[fast] = true

	hub.broadcastToClients(Message{Type: MessageTypeAnalysis})

	if _, ok := hub.clients[slow]; ok {
		t.Error("slow client with full channel should have been removed")
	}
	if _, ok := hub.clients[fast]; !ok {
		t.Error("fast client should remain registered")
	}
	select {
	case <-fast.send:
	default:
		t.Error("fast client did not receive the broadcast")
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = hub.RunWithContext(ctx)
	}()

	client := newTestClient(1)
	hub.Register <- client
	hub.Unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed after unregister")
	}
}

func TestBroadcastSessionEnded(t *testing.T) {
	hub := NewHub()
	client := newTestClient(4)
	hub.clients[client] = true

	hub.BroadcastSessionEnded("sess-1", "alice", 42.5)
	hub.broadcastToClients(<-hub.broadcast)

	msg := <-client.send
	if msg.Type != MessageTypeSessionEnded {
		t.Fatalf("message type = %q, want %q", msg.Type, MessageTypeSessionEnded)
	}
	data, ok := msg.Data.(SessionEndedData)
	if !ok {
		t.Fatalf("message data has type %T, want SessionEndedData", msg.Data)
	}
	if data.SessionID != "sess-1" || data.UserID != "alice" || data.LastScore != 42.5 {
		t.Errorf("unexpected payload: %+v", data)
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePing})
	if err != nil {
		t.Fatalf("MarshalMessage() error = %v", err)
	}
	if string(data) != `{"type":"ping","data":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}
