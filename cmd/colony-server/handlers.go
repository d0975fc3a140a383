package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daniacca/colony/internal/census"
	"github.com/daniacca/colony/internal/colony"
	"github.com/daniacca/colony/internal/colony/notifiers"
	"github.com/daniacca/colony/internal/render"
)

// extractWorldID extracts the world ID from a path like "/worlds/{worldID}/..."
// Returns the world ID and the remaining path, or empty string if not found
func extractWorldID(path string) (colony.WorldID, string) {
	if !strings.HasPrefix(path, "/worlds/") {
		return "", ""
	}

	rest := path[len("/worlds/"):]

	idx := strings.Index(rest, "/")
	if idx == -1 {
		return colony.WorldID(rest), ""
	}

	return colony.WorldID(rest[:idx]), rest[idx:]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
	}
}

// routes registers every endpoint on a new mux
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/worlds", s.handleListWorlds)
	mux.HandleFunc("/worlds/", s.handleWorldRoutes)
	mux.Handle("/events", s.events)
	mux.HandleFunc("/notifiers", s.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", s.handleNotifiersRoutes)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /worlds
// List all world IDs
func (s *Server) handleListWorlds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	worldIDs := s.manager.ListWorlds()
	ids := make([]string, len(worldIDs))
	for i, id := range worldIDs {
		ids[i] = string(id)
	}

	writeJSON(w, http.StatusOK, map[string][]string{"worlds": ids})
}

// handleWorldRoutes routes requests to world-specific handlers
// Handles paths like /worlds/{worldID}, /worlds/{worldID}/snapshot, etc.
func (s *Server) handleWorldRoutes(w http.ResponseWriter, r *http.Request) {
	worldID, remainingPath := extractWorldID(r.URL.Path)
	if worldID == "" {
		http.Error(w, "world ID is required in path: /worlds/{worldID}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "" && r.Method == http.MethodPost:
		s.handleCreateWorld(w, r, worldID)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteWorld(w, r, worldID)
	case remainingPath == "/snapshot" && r.Method == http.MethodGet:
		s.handleSnapshot(w, r, worldID)
	case remainingPath == "/grid" && r.Method == http.MethodGet:
		s.handleGrid(w, r, worldID)
	case remainingPath == "/census" && r.Method == http.MethodGet:
		s.handleCensus(w, r, worldID)
	case remainingPath == "/stream" && r.Method == http.MethodGet:
		s.handleStream(w, r, worldID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// POST /worlds/{worldID}?topology=flat|torus
// Create and seed a new world; topology defaults to torus
func (s *Server) handleCreateWorld(w http.ResponseWriter, r *http.Request, worldID colony.WorldID) {
	name := r.URL.Query().Get("topology")
	if name == "" {
		name = colony.TopologyTorus
	}
	topology, err := colony.ParseTopology(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	world, err := s.CreateWorld(worldID, topology)
	if err != nil {
		s.logger.Warnf("Failed to create world: world_id=%s error=%v", worldID, err)
		http.Error(w, "cannot create world: "+err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"world":    string(worldID),
		"topology": world.Topology().Name(),
	})
}

// DELETE /worlds/{worldID}
// Stop and delete a world
func (s *Server) handleDeleteWorld(w http.ResponseWriter, r *http.Request, worldID colony.WorldID) {
	if err := s.DeleteWorld(worldID); err != nil {
		s.logger.Warnf("Failed to delete world: world_id=%s error=%v", worldID, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("world deleted"))
}

// GET /worlds/{worldID}/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, worldID colony.WorldID) {
	world, exists := s.manager.GetWorld(worldID)
	if !exists {
		http.Error(w, "world not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, world.Snapshot())
}

// GET /worlds/{worldID}/grid
// The grid as the text renderer prints it
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request, worldID colony.WorldID) {
	world, exists := s.manager.GetWorld(worldID)
	if !exists {
		http.Error(w, "world not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := render.Text(w, world.Snapshot()); err != nil {
		s.logger.Debugf("Failed to write grid: world_id=%s error=%v", worldID, err)
	}
}

type censusResponse struct {
	Records []census.Record `json:"records"`
	Summary census.Summary  `json:"summary"`
}

// GET /worlds/{worldID}/census
func (s *Server) handleCensus(w http.ResponseWriter, r *http.Request, worldID colony.WorldID) {
	hist, exists := s.history(worldID)
	if !exists {
		http.Error(w, "world not found", http.StatusNotFound)
		return
	}

	records := hist.Records()
	writeJSON(w, http.StatusOK, censusResponse{
		Records: records,
		Summary: census.Summarize(records),
	})
}

// GET /worlds/{worldID}/stream
// WebSocket pushing one snapshot per stream interval until the world stops
// or the client goes away
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, worldID colony.WorldID) {
	world, exists := s.manager.GetWorld(worldID)
	if !exists {
		http.Error(w, "world not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	s.logger.Debugf("Stream opened: world_id=%s remote=%s", worldID, r.RemoteAddr)
	for {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(world.Snapshot()); err != nil {
			s.logger.Debugf("Stream closed: world_id=%s error=%v", worldID, err)
			return
		}

		select {
		case <-gone:
			return
		case <-world.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "world stopped"),
				time.Now().Add(time.Second))
			return
		case <-ticker.C:
		}
	}
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
// List all registered notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifierMgr.ListNotifiers()

	list := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifierMgr.GetNotifier(id)
		if exists {
			list = append(list, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifiers": list})
}

// POST /notifiers
// Register a new notifier
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://...", "headers": {...}, "kinds": ["murdered"] } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier colony.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		if kinds, ok := req.Config["kinds"].([]any); ok {
			filter := make([]colony.EventKind, 0, len(kinds))
			for _, k := range kinds {
				kStr, _ := k.(string)
				kind, err := colony.ParseEventKind(kStr)
				if err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				filter = append(filter, kind)
			}
			wh.Only(filter...)
		}

		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Infof("Notifier registered: id=%s type=%s", req.ID, req.Type)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
// Unregister a notifier
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}
	if notifierID == eventsNotifierID {
		http.Error(w, "notifier "+eventsNotifierID+" is built in", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Infof("Notifier unregistered: id=%s", notifierID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}
