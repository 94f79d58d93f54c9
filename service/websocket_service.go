package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	TypeWebsocketQuery = "query"
	TypeWebsocketChunk = "chunk"
	TypeWebsocketDone  = "done"
	TypeWebsocketError = "error"
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
)

type WebsocketRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type WebsocketQueryPayload struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type WebsocketDonePayload struct {
	Sources []string `json:"sources"`
}

// WebSocketService streams grounded answers over a websocket connection,
// one query at a time per connection.
type WebSocketService struct {
	assistant *AssistantService
	upgrader  websocket.Upgrader
}

func NewWebSocketService(assistant *AssistantService) *WebSocketService {
	return &WebSocketService{
		assistant: assistant,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var req WebsocketRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		switch req.Type {
		case TypeWebsocketPing:
			s.send(conn, WebsocketResponse{Type: TypeWebsocketPong})
		case TypeWebsocketQuery:
			var payload WebsocketQueryPayload
			if err := json.Unmarshal(req.Payload, &payload); err != nil {
				s.send(conn, WebsocketResponse{Type: TypeWebsocketError, Payload: "invalid query payload"})
				continue
			}
			s.streamAnswer(ctx, conn, payload)
		default:
			s.send(conn, WebsocketResponse{Type: TypeWebsocketError, Payload: "unknown message type"})
		}
	}
}

func (s *WebSocketService) streamAnswer(ctx context.Context, conn *websocket.Conn, payload WebsocketQueryPayload) {
	sources, err := s.assistant.Stream(ctx, payload.Query, payload.K, func(chunk string) {
		s.send(conn, WebsocketResponse{Type: TypeWebsocketChunk, Payload: chunk})
	})
	if err != nil {
		log.Printf("Stream error: %v", err)
		s.send(conn, WebsocketResponse{Type: TypeWebsocketError, Payload: err.Error()})
		return
	}
	s.send(conn, WebsocketResponse{Type: TypeWebsocketDone, Payload: WebsocketDonePayload{Sources: sources}})
}

func (s *WebSocketService) send(conn *websocket.Conn, resp WebsocketResponse) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("WebSocket write error: %v", err)
	}
}
