package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"courier/internal/store"
)

type UserHandler struct {
	Store store.Store
}

type RegisterUserRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Mobile == "" {
		http.Error(w, "name and mobile are required", http.StatusBadRequest)
		return
	}

	user, err := h.Store.RegisterUser(req.Name, req.Mobile)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := h.Store.GetUser(vars["mobile"])
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(user)
}
