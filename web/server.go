// ABOUTME: Webhook ingress HTTP server for CRM deliveries
// ABOUTME: Shared-secret authentication, JSON bodies, bridge delegation
package web

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/chronusdev/bridge/bridge"
)

type Server struct {
	db      *sql.DB
	syncKey string
	mux     *http.ServeMux
}

func NewServer(database *sql.DB, syncKey string) *Server {
	s := &Server{
		db:      database,
		syncKey: syncKey,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("/webhooks/crm/customer-created", s.requireSyncKey(s.handleCustomerCreated))
	s.mux.HandleFunc("/webhooks/crm/customer-updated", s.requireSyncKey(s.handleCustomerUpdated))
	s.mux.HandleFunc("/webhooks/crm/ticket-created", s.requireSyncKey(s.handleTicketCreated))
	s.mux.HandleFunc("/healthz", s.handleHealth)

	return s
}

// Handler exposes the route table for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting webhook server at http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// requireSyncKey rejects requests whose X-Sync-Key (or legacy X-Api-Key)
// header does not match the shared secret.
func (s *Server) requireSyncKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		key := r.Header.Get("X-Sync-Key")
		if key == "" {
			key = r.Header.Get("X-Api-Key")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.syncKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next(w, r)
	}
}

func (s *Server) handleCustomerCreated(w http.ResponseWriter, r *http.Request) {
	var payload bridge.CustomerWebhook
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	client, err := bridge.SyncCustomer(s.db, payload)
	if err != nil {
		log.Printf("customer-created sync failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"clientId": client.ID.String(),
	})
}

func (s *Server) handleCustomerUpdated(w http.ResponseWriter, r *http.Request) {
	var payload bridge.CustomerWebhook
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	client, err := bridge.SyncCustomer(s.db, payload)
	if err != nil {
		log.Printf("customer-updated sync failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"clientId": client.ID.String(),
	})
}

func (s *Server) handleTicketCreated(w http.ResponseWriter, r *http.Request) {
	var payload bridge.TicketWebhook
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := bridge.IngestTicket(s.db, payload)
	if err != nil {
		log.Printf("ticket-created ingestion failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"taskId":  result.TaskID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}
