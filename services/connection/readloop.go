package connection

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"Sobremesa/models/events"

	"github.com/gorilla/websocket"
)

// readLoop delivers server events sequentially to registered handlers.
// No two handlers run concurrently for the same connection.
func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			stale := m.genID != gen
			closing := m.closing
			m.mu.Unlock()
			if stale || closing {
				return
			}
			log.Printf("[CONN-ERROR] Read failed, starting reconnect: %v", err)
			m.reconnect(ctx)
			return
		}
		m.dispatch(data)
	}
}

// dispatch decodes one frame and hands it to its handler. A malformed
// server payload is recovered by ignoring the single event rather than
// crashing the whole session.
func (m *Manager) dispatch(data []byte) {
	var frame events.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("[CONN-WARN] Ignoring malformed frame: %v", err)
		return
	}
	if frame.Type != events.FrameEvent || frame.Event == "" {
		log.Printf("[CONN-WARN] Ignoring unexpected frame type %q", frame.Type)
		return
	}

	m.mu.Lock()
	handler := m.handlers[frame.Event]
	m.mu.Unlock()

	if handler == nil {
		log.Printf("[CONN-WARN] No handler for event %s, dropping", frame.Event)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[CONN-ERROR] Handler for %s panicked on payload, event ignored: %v", frame.Event, r)
		}
	}()
	handler(frame.Payload)
}

// reconnect retries with exponential backoff. On success it replays room
// membership: if a room and player id were established, the join is
// re-invoked BEFORE Connected is surfaced to the rest of the system, so
// every observer sees a seated player again.
func (m *Manager) reconnect(ctx context.Context) {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return
	}
	m.state = Reconnecting
	m.conn = nil
	m.mu.Unlock()
	m.notify(Reconnecting, "Connection lost, reconnecting...")

	delay := m.baseDelay
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		m.mu.Lock()
		if m.closing {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		conn, _, err := m.dialer.DialContext(ctx, m.hubURL, nil)
		if err != nil {
			log.Printf("[CONN-WARN] Reconnect attempt %d/%d failed: %v", attempt, m.maxAttempts, err)
			delay *= 2
			if delay > m.maxDelay {
				delay = m.maxDelay
			}
			continue
		}

		m.adopt(ctx, conn)

		// Replay room membership before anyone learns we are back
		m.mu.Lock()
		roomCode := m.roomCode
		m.mu.Unlock()
		if roomCode != "" {
			err := m.writeFrame(conn, events.Frame{
				Type:   events.FrameInvoke,
				Method: events.MethodJoinRoom,
				Args:   []any{roomCode, m.playerID, m.displayName},
			})
			if err != nil {
				log.Printf("[CONN-ERROR] Rejoin replay failed: %v", err)
				conn.Close()
				continue
			}
			log.Printf("[CONN] Rejoined room %s after reconnect", roomCode)
		}

		m.mu.Lock()
		m.state = Connected
		m.mu.Unlock()
		m.notify(Connected, "")
		log.Printf("[CONN-SUCCESS] Reconnected on attempt %d", attempt)
		return
	}

	// Automatic reconnect gave up: the session is lost and must be
	// restarted by the user via the lobby flow.
	m.mu.Lock()
	m.state = Disconnected
	m.mu.Unlock()
	m.notify(Disconnected, "Connection to the game server was lost")
	log.Printf("[CONN-ERROR] Reconnect gave up after %d attempts", m.maxAttempts)
}

// pingLoop keeps the channel alive. Gorilla peers answer pings at the
// protocol level, which resets our read deadline via the pong handler.
func (m *Manager) pingLoop(conn *websocket.Conn, gen int) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		m.mu.Lock()
		stale := m.genID != gen || m.conn != conn
		m.mu.Unlock()
		if stale {
			return
		}
		m.writeMu.Lock()
		err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
		m.writeMu.Unlock()
		if err != nil {
			return
		}
	}
}
