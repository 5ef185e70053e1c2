package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"courier/internal/models"
	"courier/internal/store"
	"courier/internal/ws"
)

type MessageHandler struct {
	Store store.Store
	Hub   *ws.Hub
}

type DraftMessageRequest struct {
	Content string `json:"content"`
}

type SendMessageRequest struct {
	ID        int        `json:"id"`
	Sender    string     `json:"sender"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (h *MessageHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var req DraftMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg := h.Store.DraftMessage(req.Content)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	groupName := vars["name"]

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	draft := models.Message{ID: req.ID, Content: req.Content, Timestamp: time.Now()}
	if req.Timestamp != nil {
		draft.Timestamp = *req.Timestamp
	}

	count, err := h.Store.SendMessage(draft, req.Sender, groupName)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.Hub != nil {
		draft.Sender = req.Sender
		draft.Group = groupName
		h.Hub.Broadcast(draft)
	}

	json.NewEncoder(w).Encode(map[string]int{"count": count})
}

func (h *MessageHandler) GetGroupMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	messages, err := h.Store.GroupMessages(vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(messages)
}

// Search answers the "Kth latest between" query. start and end are
// RFC 3339 instants, both exclusive; k=1 is the earliest message inside
// the window.
func (h *MessageHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		http.Error(w, "invalid start: "+err.Error(), http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		http.Error(w, "invalid end: "+err.Error(), http.StatusBadRequest)
		return
	}
	k, err := strconv.Atoi(q.Get("k"))
	if err != nil || k < 1 {
		http.Error(w, "k must be a positive integer", http.StatusBadRequest)
		return
	}

	content, err := h.Store.KthLatestBetween(start, end, k)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"content": content})
}
