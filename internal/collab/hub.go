package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Room is one training run's set of connected viewers, playhead tracker,
// and (once attached) its live RunState.
type Room struct {
	runID     string
	clients   map[string]*Client // clientID -> client
	playheads *PlayheadManager
	run       *RunState
}

func NewRoom(runID string) *Room {
	return &Room{
		runID:     runID,
		clients:   make(map[string]*Client),
		playheads: NewPlayheadManager(),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // runID -> room
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// RegisterRun attaches rs to runID's room, creating the room if no viewer
// has joined it yet. Call this once a run's Model exists, before (or after)
// viewers start connecting.
func (h *Hub) RegisterRun(runID string, rs *RunState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[runID]
	if !ok {
		room = NewRoom(runID)
		h.rooms[runID] = room
	}
	room.run = rs
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.RunID]
	if !ok {
		room = NewRoom(client.RunID)
		h.rooms[client.RunID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Send current playhead state to new client
	stateMsg := room.playheads.StateMessage()
	if stateMsg != nil {
		client.Send(stateMsg)
	}

	// If this run is already underway, bring the new viewer up to speed on
	// how far it's progressed before any step broadcasts arrive.
	if room.run != nil {
		if syncMsg := room.run.SyncMessage(); syncMsg != nil {
			client.Send(syncMsg)
		}
	}

	// Broadcast join to other clients
	joinPayload, _ := json.Marshal(ViewerJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypeViewerJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.broadcastToRoom(client.RunID, joinMsg, client.ClientID)

	slog.Info("viewer joined", "user", client.UserID, "run", client.RunID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.RunID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.playheads.Remove(client.UserID)

	if len(room.clients) == 0 && room.run == nil {
		delete(h.rooms, client.RunID)
	}
	h.mu.Unlock()

	// Broadcast leave to remaining clients
	leavePayload, _ := json.Marshal(ViewerLeavePayload{
		UserID: client.UserID,
	})
	leaveMsg := &Message{
		Type:    TypeViewerLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}
	h.broadcastToRoom(client.RunID, leaveMsg, "")

	slog.Info("viewer left", "user", client.UserID, "run", client.RunID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePlayheadUpdate:
		h.handlePlayheadUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePlayheadUpdate(sender *Client, msg *Message) {
	var playhead PlayheadPayload
	if err := json.Unmarshal(msg.Payload, &playhead); err != nil {
		slog.Warn("invalid playhead payload", "error", err)
		return
	}

	playhead.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.RunID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.playheads.Update(sender.UserID, &playhead)

	// Broadcast to other clients in room
	outPayload, _ := json.Marshal(playhead)
	outMsg := &Message{
		Type:    TypePlayheadUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}
	h.broadcastToRoom(sender.RunID, outMsg, sender.ClientID)
}

// BroadcastStep pushes one accepted training step to every viewer of runID.
// It's a no-op (not an error) if nobody has joined that run yet.
func (h *Hub) BroadcastStep(runID string, step *StepBroadcastPayload) {
	payload, err := json.Marshal(step)
	if err != nil {
		slog.Error("marshal step broadcast", "error", err, "run", runID)
		return
	}
	h.broadcastToRoom(runID, &Message{Type: TypeStepBroadcast, RunID: runID, Payload: payload}, "")
}

func (h *Hub) broadcastToRoom(runID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[runID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
