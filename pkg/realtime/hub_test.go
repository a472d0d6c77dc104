package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/auth"
)

func TestHubConnectGroups(t *testing.T) {
	assert := assert.New(t)
	hub := NewHub()

	manager := hub.Connect(&auth.Account{UserID: "manager", Roles: []string{auth.RoleCityManager}})
	admin := hub.Connect(&auth.Account{UserID: "admin", Roles: []string{auth.RoleAdmin}})
	traveller := hub.Connect(&auth.Account{UserID: "traveller"})
	anonymous := hub.Connect(nil)

	assert.True(hub.InGroup(manager, GroupCityManagers))
	assert.True(hub.InGroup(admin, GroupCityManagers))
	assert.True(hub.InGroup(traveller, GroupTravellers))
	assert.True(hub.InGroup(anonymous, GroupTravellers))
	assert.False(hub.InGroup(manager, GroupTravellers))
	assert.NotEqual(manager.ID, traveller.ID)

	assert.Equal(ConnectionStats{TotalConnections: 4, TravellersConnected: 2, ManagersConnected: 2}, hub.Stats())
}

func TestHubBroadcastTargets(t *testing.T) {
	assert := assert.New(t)
	hub := NewHub()

	manager := hub.Connect(&auth.Account{UserID: "manager", Roles: []string{auth.RoleCityManager}})
	subscriber := hub.Connect(&auth.Account{UserID: "subscriber"})
	other := hub.Connect(&auth.Account{UserID: "other"})

	hub.AddToGroup(subscriber, RouteGroup("R1"))
	hub.AddToGroup(manager, RouteGroup("R1"))

	delivered := hub.Broadcast([]string{RouteGroup("R1"), GroupCityManagers}, &Message{Type: "RouteDelayUpdate"})
	assert.Equal(2, delivered)

	assert.Len(manager.Messages(), 1)
	assert.Len(subscriber.Messages(), 1)
	assert.Len(other.Messages(), 0)

	delivered = hub.Broadcast(nil, &Message{Type: "SystemAlert"})
	assert.Equal(3, delivered)
	assert.Len(other.Messages(), 1)
}

func TestHubUnsubscribeAndClose(t *testing.T) {
	assert := assert.New(t)
	hub := NewHub()

	connection := hub.Connect(&auth.Account{UserID: "traveller"})
	hub.AddToGroup(connection, RouteGroup("R1"))
	hub.RemoveFromGroup(connection, RouteGroup("R1"))

	assert.Equal(0, hub.Broadcast([]string{RouteGroup("R1")}, &Message{Type: "BusLocationUpdate"}))

	connection.Close()
	connection.Close()

	_, open := <-connection.Messages()
	assert.False(open)
	assert.False(connection.Send(&Message{Type: "late"}))
	assert.Equal(0, hub.Stats().TotalConnections)

	hub.AddToGroup(connection, RouteGroup("R1"))
	assert.False(hub.InGroup(connection, RouteGroup("R1")))
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	connection := hub.Connect(nil)

	delivered := 0
	for i := 0; i < connectionBufferSize+5; i++ {
		delivered += hub.Broadcast(nil, &Message{Type: "SystemAlert"})
	}

	assert.Equal(t, connectionBufferSize, delivered)
	assert.Len(t, connection.Messages(), connectionBufferSize)
	assert.True(t, hub.InGroup(connection, GroupTravellers))
}

func TestHubConcurrentConnections(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			connection := hub.Connect(nil)
			hub.AddToGroup(connection, RouteGroup("R1"))
			hub.Broadcast([]string{RouteGroup("R1")}, &Message{Type: "BusLocationUpdate"})
			connection.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Stats().TotalConnections)
}

func TestGroupNames(t *testing.T) {
	assert.Equal(t, "Route_42", RouteGroup("42"))
	assert.Equal(t, "Management_Route_42", ManagementRouteGroup("42"))
}
