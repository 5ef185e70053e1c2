package main

import (
	"flag"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"courier/internal/config"
	"courier/internal/handlers"
	"courier/internal/middleware"
	"courier/internal/store/memstore"
	"courier/internal/ws"
)

var addr = flag.String("addr", "", "http service address (overrides COURIER_ADDR)")

func main() {
	flag.Parse()

	cfg := config.Load()
	if *addr != "" {
		cfg.Addr = *addr
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	store := memstore.New()

	hub := ws.NewHub(store)
	go hub.Run()

	userHandler := &handlers.UserHandler{Store: store}
	groupHandler := &handlers.GroupHandler{Store: store, Hub: hub}
	messageHandler := &handlers.MessageHandler{Store: store, Hub: hub}

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)

	// API Endpoints
	r.HandleFunc("/users", userHandler.Register).Methods("POST")
	r.HandleFunc("/users/{mobile}", userHandler.GetUser).Methods("GET")
	r.HandleFunc("/groups", groupHandler.CreateGroup).Methods("POST")
	r.HandleFunc("/groups/members/{mobile}", groupHandler.RemoveMember).Methods("DELETE")
	r.HandleFunc("/groups/{name}", groupHandler.GetGroup).Methods("GET")
	r.HandleFunc("/groups/{name}/members", groupHandler.GetMembers).Methods("GET")
	r.HandleFunc("/groups/{name}/admin", groupHandler.ChangeAdmin).Methods("POST")
	r.HandleFunc("/groups/{name}/messages", messageHandler.Send).Methods("POST")
	r.HandleFunc("/groups/{name}/messages", messageHandler.GetGroupMessages).Methods("GET")
	r.HandleFunc("/messages", messageHandler.Draft).Methods("POST")
	r.HandleFunc("/messages/search", messageHandler.Search).Methods("GET")

	// WebSocket Endpoint
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		mobile := r.URL.Query().Get("mobile")
		if mobile == "" {
			http.Error(w, "mobile is required", http.StatusBadRequest)
			return
		}
		if _, err := store.GetUser(mobile); err != nil {
			http.Error(w, "unknown user", http.StatusNotFound)
			return
		}
		ws.ServeWs(hub, w, r, mobile)
	})

	log.Info("starting server", "addr", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, r))
}
