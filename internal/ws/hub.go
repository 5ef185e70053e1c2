package ws

import (
	"encoding/json"

	"github.com/charmbracelet/log"

	"courier/internal/models"
	"courier/internal/store"
)

// Hub fans out delivered messages to connected clients. Delivery itself
// happens in the HTTP layer through the store; the hub only pushes what
// was already accepted there.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages accepted by the store, ready for fan-out.
	broadcast chan models.Message

	// Out-of-band notifications addressed to a single user.
	notify chan notification

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	store store.Store
}

type notification struct {
	mobile  string
	payload []byte
}

func NewHub(store store.Store) *Hub {
	return &Hub{
		broadcast:  make(chan models.Message),
		notify:     make(chan notification),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		store:      store,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			msgBytes, _ := json.Marshal(message)

			for client := range h.clients {
				isMember, err := h.store.IsMember(message.Group, client.mobile)
				if err != nil {
					log.Error("membership check failed", "group", message.Group, "err", err)
					continue
				}
				if !isMember {
					continue
				}
				select {
				case client.send <- msgBytes:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		case n := <-h.notify:
			for client := range h.clients {
				if client.mobile != n.mobile {
					continue
				}
				select {
				case client.send <- n.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast hands a delivered message to the hub for fan-out.
func (h *Hub) Broadcast(message models.Message) {
	h.broadcast <- message
}

// Notify pushes an out-of-band payload to every connection of one user.
func (h *Hub) Notify(mobile string, payload interface{}) {
	msgBytes, _ := json.Marshal(payload)
	h.notify <- notification{mobile: mobile, payload: msgBytes}
}
