package matchhub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// keeper is a scorer connection. Parsed events execute on this goroutine
// against the hub's apply methods; rejections go back to this keeper only.
type keeper struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Receive chan []byte
}

func newKeeper(h *Hub, conn *websocket.Conn) *keeper {
	return &keeper{
		Hub:     h,
		Conn:    conn,
		Receive: make(chan []byte, 8),
	}
}

func (k *keeper) leave() {
	select {
	case k.Hub.leaveKeeper <- k:
	case <-k.Hub.done:
	}
}

func (k *keeper) readEvents() {
	defer func() {
		k.leave()
		_ = k.Conn.Close()
	}()

	k.Conn.SetReadLimit(maxMessageSize)
	_ = k.Conn.SetReadDeadline(time.Now().Add(pongWait))
	k.Conn.SetPongHandler(func(string) error {
		_ = k.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, bytes, err := k.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				select {
				case k.Hub.Errors <- err:
				case <-k.Hub.done:
				}
			}
			return
		}

		var genericEvent GenericEvent
		err = json.Unmarshal(bytes, &genericEvent)
		if err != nil {
			k.reject(ErrEventParseFailed)
			continue
		}

		event, err := genericEvent.parseEvent()
		if err != nil {
			k.reject(err)
			continue
		}

		if err := event.execute(k.Hub); err != nil {
			k.reject(err)
		}
	}
}

// reject reports a failed event back to this scorer without disturbing the
// other clients.
func (k *keeper) reject(err error) {
	msg := k.Hub.toByteArr(envelope{"error": err.Error()})
	select {
	case k.Receive <- msg:
	default:
	}
}

func (k *keeper) writeEvents() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		k.leave()
		_ = k.Conn.Close()
	}()
	for {
		select {
		case msg, ok := <-k.Receive:
			_ = k.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = k.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			writer, err := k.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = writer.Write(msg)

			for i := 0; i < len(k.Receive); i++ {
				_, _ = writer.Write(newline)
				_, _ = writer.Write(<-k.Receive)
			}

			if err := writer.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = k.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := k.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
