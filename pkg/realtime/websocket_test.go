package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/auth"
)

type staticValidator struct{}

func (staticValidator) ValidateToken(ctx context.Context, tokenString string) (interface{}, error) {
	switch tokenString {
	case "traveller-token":
		return &validator.ValidatedClaims{RegisteredClaims: validator.RegisteredClaims{Subject: "traveller"}}, nil
	case "admin-token":
		return &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: "admin"},
			CustomClaims:     &auth.CustomClaims{Roles: []string{auth.RoleAdmin}},
		}, nil
	}
	return nil, errors.New("bad token")
}

func TestHandleFrame(t *testing.T) {
	assert := assert.New(t)

	hub := NewHub()
	server := NewWebsocketServer(hub, staticValidator{})

	anonymous := hub.Connect(nil)
	server.HandleFrame(anonymous, &ClientFrame{Action: "subscribe", RouteRef: "R1"})
	reply := <-anonymous.Messages()
	assert.Equal("Error", reply.Type)
	assert.False(hub.InGroup(anonymous, RouteGroup("R1")))

	traveller := hub.Connect(&auth.Account{UserID: "traveller"})
	server.HandleFrame(traveller, &ClientFrame{Action: "subscribe", RouteRef: "R1"})
	reply = <-traveller.Messages()
	assert.Equal("RouteSubscriptionConfirmed", reply.Type)
	assert.Equal("R1", reply.Data)
	assert.True(hub.InGroup(traveller, RouteGroup("R1")))

	server.HandleFrame(traveller, &ClientFrame{Action: "join_management", RouteRef: "R1"})
	reply = <-traveller.Messages()
	assert.Equal("Error", reply.Type)
	assert.Equal(errForbidden.Error(), reply.Data)

	server.HandleFrame(traveller, &ClientFrame{Action: "unsubscribe", RouteRef: "R1"})
	reply = <-traveller.Messages()
	assert.Equal("RouteUnsubscriptionConfirmed", reply.Type)
	assert.False(hub.InGroup(traveller, RouteGroup("R1")))

	server.HandleFrame(traveller, &ClientFrame{Action: "dance"})
	reply = <-traveller.Messages()
	assert.Equal("Error", reply.Type)
}

func TestHandleFrameManagerActions(t *testing.T) {
	assert := assert.New(t)

	hub := NewHub()
	server := NewWebsocketServer(hub, staticValidator{})

	admin := hub.Connect(&auth.Account{UserID: "admin", Roles: []string{auth.RoleAdmin}})
	traveller := hub.Connect(&auth.Account{UserID: "traveller"})

	server.HandleFrame(admin, &ClientFrame{Action: "join_management", RouteRef: "R1"})
	assert.True(hub.InGroup(admin, ManagementRouteGroup("R1")))

	server.HandleFrame(admin, &ClientFrame{Action: "connection_stats"})
	reply := <-admin.Messages()
	assert.Equal("ConnectionStats", reply.Type)
	assert.Equal(ConnectionStats{TotalConnections: 2, TravellersConnected: 1, ManagersConnected: 1}, reply.Data)

	server.HandleFrame(admin, &ClientFrame{Action: "send_message_to_all", Message: "Service resumed"})
	assert.Equal("SystemMessage", (<-traveller.Messages()).Type)
	assert.Equal("SystemMessage", (<-admin.Messages()).Type)

	server.HandleFrame(traveller, &ClientFrame{Action: "send_message_to_all", Message: "hi"})
	assert.Equal("Error", (<-traveller.Messages()).Type)
	assert.Len(admin.Messages(), 0)
}

func dialTestServer(t *testing.T, server *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query

	return websocket.DefaultDialer.Dial(url, nil)
}

func TestWebsocketSubscribeAndReceive(t *testing.T) {
	assert := assert.New(t)

	hub := NewHub()
	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebsocketServer(hub, staticValidator{}))
	server := httptest.NewServer(mux)
	defer server.Close()

	wsConn, _, err := dialTestServer(t, server, "?access_token=traveller-token")
	assert.Nil(err)
	defer wsConn.Close()

	wsConn.SetReadDeadline(time.Now().Add(5 * time.Second))

	assert.Nil(wsConn.WriteJSON(ClientFrame{Action: "subscribe", RouteRef: "R7"}))

	var reply Message
	assert.Nil(wsConn.ReadJSON(&reply))
	assert.Equal("RouteSubscriptionConfirmed", reply.Type)
	assert.Equal("R7", reply.Data)

	delivered := hub.Broadcast([]string{RouteGroup("R7")}, &Message{Type: "RouteDelayUpdate", Data: map[string]int{"DelayMinutes": 4}})
	assert.Equal(1, delivered)

	assert.Nil(wsConn.ReadJSON(&reply))
	assert.Equal("RouteDelayUpdate", reply.Type)
	assert.Equal(map[string]interface{}{"DelayMinutes": float64(4)}, reply.Data)
}

func TestWebsocketRejectsBadToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebsocketServer(NewHub(), staticValidator{}))
	server := httptest.NewServer(mux)
	defer server.Close()

	_, response, err := dialTestServer(t, server, "?access_token=forged")
	assert.NotNil(t, err)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}
