package server

import (
	"encoding/json"
	"net/http"

	"trend-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It exits when the server stops.
// Only this goroutine sends on or closes a client's channel.
func (s *ReportServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			if r := s.report(); r != nil {
				client.send <- r
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.connections.Store(int64(len(s.clients)))
			}

		case client := <-s.resend:
			if _, ok := s.clients[client]; !ok {
				continue
			}
			r := s.report()
			if r == nil {
				continue
			}
			response := filterReport(r, client.Subscription())
			response.Type = "INITIAL"
			select {
			case client.send <- response:
			default:
			}

		case report := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- filterReport(report, client.Subscription()):
				default:
					// slow consumer
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.connections.Store(int64(len(s.clients)))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateReport replaces the served report without notifying subscribers.
func (s *ReportServer) UpdateReport(report *models.MReport) {
	s.stateMutex.Lock()
	s.latestReport = report
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

// Broadcast replaces the served report and queues it for every subscriber.
func (s *ReportServer) Broadcast(report *models.MReport) {
	s.UpdateReport(report)

	select {
	case s.broadcast <- report:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *ReportServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan *models.MReport, 32),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *ReportServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case "subscribe":
		client.Subscribe(cmd.Charts)
	case "unsubscribe":
		client.Subscribe(nil)
	default:
		return
	}

	// the hub owns client.send and replies with the filtered report
	select {
	case s.resend <- client:
	case <-s.done:
	}
}
