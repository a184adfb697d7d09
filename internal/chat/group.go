package chat

import (
	"sync"

	"github.com/omaralkhatib/roomly/internal/live"
)

// Conn is one live chat connection. Each connection owns a FIFO outbound
// queue, so deliveries to one slow tab never stall another.
type Conn struct {
	id     string
	userID int64
	sub    *live.Subscription
}

// ID returns the transport connection identifier
func (c *Conn) ID() string {
	return c.id
}

// UserID returns the user the connection belongs to
func (c *Conn) UserID() int64 {
	return c.userID
}

// Events returns the connection's outbound event channel
func (c *Conn) Events() <-chan live.Event {
	return c.sub.Events()
}

// Groups maps transport connection identifiers to user identities. A user may
// have any number of active connections (tabs, devices); sending to a user
// fans the event out to all of them. The index is live state only and starts
// empty on every process restart.
type Groups struct {
	mu      sync.RWMutex
	conns   map[string]*Conn
	members map[int64]map[string]*Conn
}

// NewGroups creates an empty connection index
func NewGroups() *Groups {
	return &Groups{
		conns:   make(map[string]*Conn),
		members: make(map[int64]map[string]*Conn),
	}
}

// Join adds a connection to the user's group. Idempotent: rejoining an
// already-known connection ID returns the existing connection.
func (g *Groups) Join(connectionID string, userID int64) *Conn {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.conns[connectionID]; ok {
		return existing
	}

	conn := &Conn{
		id:     connectionID,
		userID: userID,
		sub:    live.NewStandalone(),
	}
	g.conns[connectionID] = conn

	set, ok := g.members[userID]
	if !ok {
		set = make(map[string]*Conn)
		g.members[userID] = set
	}
	set[connectionID] = conn
	return conn
}

// Leave removes a connection from whichever group it belongs to and discards
// its queue. Safe to call for unknown IDs, so abnormal disconnects need no
// clean handshake.
func (g *Groups) Leave(connectionID string) {
	g.mu.Lock()
	conn, ok := g.conns[connectionID]
	if ok {
		delete(g.conns, connectionID)
		if set, exists := g.members[conn.userID]; exists {
			delete(set, connectionID)
			if len(set) == 0 {
				delete(g.members, conn.userID)
			}
		}
	}
	g.mu.Unlock()

	if ok {
		conn.sub.Close()
	}
}

// Send enqueues the event on every connection in the user's group and returns
// the number of connections reached. Never blocks on a slow connection.
func (g *Groups) Send(userID int64, event live.Event) int {
	g.mu.RLock()
	targets := make([]*Conn, 0, len(g.members[userID]))
	for _, conn := range g.members[userID] {
		targets = append(targets, conn)
	}
	g.mu.RUnlock()

	for _, conn := range targets {
		conn.sub.Enqueue(event)
	}
	return len(targets)
}

// ConnectionCount returns the number of active connections for a user
func (g *Groups) ConnectionCount(userID int64) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members[userID])
}
