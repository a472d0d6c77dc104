// Package realtime pushes live route updates to connected clients and keeps
// the short lived delay state the trip planner reads.
package realtime

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/auth"
)

const (
	GroupCityManagers = "CityManagers"
	GroupTravellers   = "Travellers"

	connectionBufferSize = 16
)

func RouteGroup(routeRef string) string {
	return fmt.Sprintf("Route_%s", routeRef)
}

func ManagementRouteGroup(routeRef string) string {
	return fmt.Sprintf("Management_Route_%s", routeRef)
}

// Message is the frame sent to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Connection is one client's view of the hub. Messages that arrive while its
// buffer is full are dropped.
type Connection struct {
	ID      string
	Account *auth.Account

	channel chan *Message
	hub     *Hub
}

func (c *Connection) Messages() <-chan *Message {
	return c.channel
}

// Send queues a message for this connection only.
func (c *Connection) Send(message *Message) bool {
	c.hub.lock.RLock()
	defer c.hub.lock.RUnlock()

	if _, ok := c.hub.connections[c.ID]; !ok {
		return false
	}

	return c.trySend(message)
}

func (c *Connection) trySend(message *Message) bool {
	select {
	case c.channel <- message:
		return true
	default:
		log.Debug().Str("connection", c.ID).Str("type", message.Type).Msg("Connection channel blocked")
		return false
	}
}

func (c *Connection) Close() {
	c.hub.remove(c)
}

type ConnectionStats struct {
	TotalConnections    int
	TravellersConnected int
	ManagersConnected   int
}

type Hub struct {
	connections map[string]*Connection
	groups      map[string]map[string]*Connection
	lock        sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: map[string]*Connection{},
		groups:      map[string]map[string]*Connection{},
	}
}

// Connect registers a client. Managers join CityManagers and everyone else,
// including anonymous clients, joins Travellers.
func (h *Hub) Connect(account *auth.Account) *Connection {
	connection := &Connection{
		ID:      uuid.New().String(),
		Account: account,
		channel: make(chan *Message, connectionBufferSize),
		hub:     h,
	}

	group := GroupTravellers
	if account != nil && account.IsManager() {
		group = GroupCityManagers
	}

	h.lock.Lock()
	h.connections[connection.ID] = connection
	h.addToGroupLocked(connection, group)
	h.lock.Unlock()

	log.Info().Str("connection", connection.ID).Str("group", group).Msg("Client connected")

	return connection
}

func (h *Hub) AddToGroup(connection *Connection, group string) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.connections[connection.ID]; !ok {
		return
	}
	h.addToGroupLocked(connection, group)
}

func (h *Hub) addToGroupLocked(connection *Connection, group string) {
	members, ok := h.groups[group]
	if !ok {
		members = map[string]*Connection{}
		h.groups[group] = members
	}
	members[connection.ID] = connection
}

func (h *Hub) RemoveFromGroup(connection *Connection, group string) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.removeFromGroupLocked(connection, group)
}

func (h *Hub) removeFromGroupLocked(connection *Connection, group string) {
	members, ok := h.groups[group]
	if !ok {
		return
	}

	delete(members, connection.ID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

func (h *Hub) remove(connection *Connection) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.connections[connection.ID]; !ok {
		return
	}

	delete(h.connections, connection.ID)
	for group := range h.groups {
		h.removeFromGroupLocked(connection, group)
	}
	close(connection.channel)

	log.Info().Str("connection", connection.ID).Msg("Client disconnected")
}

// Broadcast delivers the message once to every connection in any of the
// target groups, or to every connection when there are no targets. It returns
// how many connections accepted the message.
func (h *Hub) Broadcast(targets []string, message *Message) int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	recipients := map[string]*Connection{}
	if len(targets) == 0 {
		recipients = h.connections
	} else {
		for _, target := range targets {
			for id, connection := range h.groups[target] {
				recipients[id] = connection
			}
		}
	}

	delivered := 0
	for _, connection := range recipients {
		if connection.trySend(message) {
			delivered++
		}
	}

	return delivered
}

func (h *Hub) InGroup(connection *Connection, group string) bool {
	h.lock.RLock()
	defer h.lock.RUnlock()

	_, ok := h.groups[group][connection.ID]
	return ok
}

func (h *Hub) Stats() ConnectionStats {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return ConnectionStats{
		TotalConnections:    len(h.connections),
		TravellersConnected: len(h.groups[GroupTravellers]),
		ManagersConnected:   len(h.groups[GroupCityManagers]),
	}
}
