package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"courier/internal/store"
	"courier/internal/ws"
)

type GroupHandler struct {
	Store store.Store
	Hub   *ws.Hub
}

type CreateGroupRequest struct {
	// Member mobiles in order; the first is the creator and, for
	// multi-party groups, the admin.
	Members []string `json:"members"`
}

type ChangeAdminRequest struct {
	Approver string `json:"approver"`
	User     string `json:"user"`
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Members) < 2 {
		http.Error(w, "a group needs at least two members", http.StatusBadRequest)
		return
	}

	group, err := h.Store.CreateGroup(req.Members)
	if err != nil {
		writeError(w, err)
		return
	}

	// Let every member's live connection know about the new group.
	if h.Hub != nil {
		for _, mobile := range req.Members {
			h.Hub.Notify(mobile, map[string]string{"type": "new_group", "group": group.Name})
		}
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(group)
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	group, err := h.Store.GetGroup(vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(group)
}

func (h *GroupHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	members, err := h.Store.GroupMembers(vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(members)
}

func (h *GroupHandler) ChangeAdmin(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req ChangeAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.ChangeAdmin(req.Approver, req.User, vars["name"]); err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"admin": req.User})
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := h.Store.RemoveUser(vars["mobile"])
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(result)
}
