package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"restopos/domain"
)

func TestOrderEventsBroadcast(t *testing.T) {
	server, db, token := newTestServer(t)
	f := seedFixtures(t, db)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/orders/events?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial events socket: %v", err)
	}
	defer conn.Close()

	var order domain.Order
	status := request(t, http.MethodPost, server.URL+"/api/orders", token, soupOrder(f), &order)
	if status != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201", status)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}

	var event struct {
		Event   string       `json:"event"`
		Payload domain.Order `json:"payload"`
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("decode event %q: %v", raw, err)
	}
	if event.Event != "orderCreated" {
		t.Errorf("event = %q, want orderCreated", event.Event)
	}
	if event.Payload.ID != order.ID {
		t.Errorf("event order id = %d, want %d", event.Payload.ID, order.ID)
	}

	// A status change reaches the same connection.
	request(t, http.MethodPut, apiURL(server, "/api/orders/%d/status", order.ID), token,
		map[string]int{"statusCode": domain.StatusInKitchen}, nil)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read status event: %v", err)
	}
	var statusEvent struct {
		Event   string `json:"event"`
		Payload struct {
			OrderID    int64  `json:"orderId"`
			StatusCode int    `json:"statusCode"`
			Status     string `json:"status"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &statusEvent); err != nil {
		t.Fatalf("decode status event %q: %v", raw, err)
	}
	if statusEvent.Event != "orderStatus" {
		t.Errorf("event = %q, want orderStatus", statusEvent.Event)
	}
	if statusEvent.Payload.StatusCode != domain.StatusInKitchen || statusEvent.Payload.Status != "in_kitchen" {
		t.Errorf("status payload = %+v, want in_kitchen", statusEvent.Payload)
	}
}

func TestOrderEventsRequireToken(t *testing.T) {
	server, _, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/orders/events"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without token succeeded, want rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %+v, want 401", resp)
	}
}
