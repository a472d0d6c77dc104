package realtime

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/auth"
)

const writeWait = 10 * time.Second

var errAuthenticationRequired = errors.New("authentication required")
var errForbidden = errors.New("insufficient role")

// ClientFrame is a request sent by a websocket client.
type ClientFrame struct {
	Action   string `json:"action"`
	RouteRef string `json:"routeRef"`
	Message  string `json:"message"`
}

type WebsocketServer struct {
	Hub       *Hub
	Validator auth.TokenValidator

	upgrader websocket.Upgrader
}

func NewWebsocketServer(hub *Hub, validator auth.TokenValidator) *WebsocketServer {
	return &WebsocketServer{
		Hub:       hub,
		Validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request. Clients may authenticate with an
// access_token query parameter or an Authorization header; clients without a
// token connect anonymously as travellers.
func (s *WebsocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("access_token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}

	var account *auth.Account
	if token != "" {
		var err error
		account, err = auth.Authenticate(r.Context(), s.Validator, token)
		if err != nil {
			http.Error(w, "Invalid auth token", http.StatusUnauthorized)
			return
		}
	}

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket")
		return
	}

	connection := s.Hub.Connect(account)

	go s.writeLoop(wsConn, connection)
	s.readLoop(wsConn, connection)
}

func (s *WebsocketServer) writeLoop(wsConn *websocket.Conn, connection *Connection) {
	defer wsConn.Close()

	for message := range connection.Messages() {
		wsConn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := wsConn.WriteJSON(message); err != nil {
			log.Debug().Err(err).Str("connection", connection.ID).Msg("Failed to write to websocket")
			connection.Close()
			return
		}
	}

	wsConn.SetWriteDeadline(time.Now().Add(writeWait))
	wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *WebsocketServer) readLoop(wsConn *websocket.Conn, connection *Connection) {
	defer connection.Close()

	for {
		var frame ClientFrame
		err := wsConn.ReadJSON(&frame)

		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			log.Error().Err(err).Str("connection", connection.ID).Msg("Client disconnected with error")
			return
		} else if err != nil {
			return
		}

		s.HandleFrame(connection, &frame)
	}
}

// HandleFrame applies a client request and queues the reply on the connection.
func (s *WebsocketServer) HandleFrame(connection *Connection, frame *ClientFrame) {
	var err error

	switch frame.Action {
	case "subscribe":
		err = s.subscribe(connection, frame.RouteRef)
	case "unsubscribe":
		err = s.unsubscribe(connection, frame.RouteRef)
	case "join_management":
		err = s.joinManagement(connection, frame.RouteRef)
	case "send_message_to_all":
		err = s.sendMessageToAll(connection, frame.Message)
	case "connection_stats":
		err = s.connectionStats(connection)
	default:
		err = errors.New("unknown action")
	}

	if err != nil {
		connection.Send(&Message{Type: "Error", Data: err.Error()})
	}
}

func (s *WebsocketServer) subscribe(connection *Connection, routeRef string) error {
	if connection.Account == nil {
		return errAuthenticationRequired
	}
	if routeRef == "" {
		return errors.New("routeRef is required")
	}

	s.Hub.AddToGroup(connection, RouteGroup(routeRef))
	log.Info().Str("connection", connection.ID).Str("route", routeRef).Msg("Connection subscribed to route")

	connection.Send(&Message{Type: "RouteSubscriptionConfirmed", Data: routeRef})

	return nil
}

func (s *WebsocketServer) unsubscribe(connection *Connection, routeRef string) error {
	if connection.Account == nil {
		return errAuthenticationRequired
	}

	s.Hub.RemoveFromGroup(connection, RouteGroup(routeRef))
	log.Info().Str("connection", connection.ID).Str("route", routeRef).Msg("Connection unsubscribed from route")

	connection.Send(&Message{Type: "RouteUnsubscriptionConfirmed", Data: routeRef})

	return nil
}

func (s *WebsocketServer) joinManagement(connection *Connection, routeRef string) error {
	if connection.Account == nil {
		return errAuthenticationRequired
	}
	if !connection.Account.HasRole(auth.RoleCityManager, auth.RoleSeniorManager, auth.RoleAdmin) {
		return errForbidden
	}

	s.Hub.AddToGroup(connection, ManagementRouteGroup(routeRef))
	log.Info().Str("connection", connection.ID).Str("route", routeRef).Msg("Manager connection joined route management")

	return nil
}

func (s *WebsocketServer) sendMessageToAll(connection *Connection, message string) error {
	if connection.Account == nil {
		return errAuthenticationRequired
	}
	if !connection.Account.HasRole(auth.RoleAdmin) {
		return errForbidden
	}

	s.Hub.Broadcast(nil, &Message{
		Type: "SystemMessage",
		Data: map[string]interface{}{
			"Message":   message,
			"Timestamp": time.Now().UTC(),
		},
	})
	log.Info().Str("message", message).Msg("System message sent to all clients")

	return nil
}

func (s *WebsocketServer) connectionStats(connection *Connection) error {
	if connection.Account == nil {
		return errAuthenticationRequired
	}
	if !connection.Account.HasRole(auth.RoleCityManager, auth.RoleSeniorManager, auth.RoleAdmin) {
		return errForbidden
	}

	connection.Send(&Message{Type: "ConnectionStats", Data: s.Hub.Stats()})

	return nil
}
