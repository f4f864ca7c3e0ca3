package relay

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"didvault/internal/domain"
)

// SyncRecord is one propagation received by a Receiver.
type SyncRecord struct {
	Target     string `json:"target"`
	ReceivedAt int64  `json:"received_at"`
}

// Receiver is an in-memory relay endpoint. It accepts POST /sync and lets
// callers read back what was received with GET /sync/{did}.
type Receiver struct {
	log *zap.Logger
	now func() time.Time

	mu    sync.RWMutex
	byDID map[domain.DID][]SyncRecord
}

// NewReceiver returns an empty receiver.
func NewReceiver(log *zap.Logger) *Receiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Receiver{
		log:   log.With(zap.String("component", "relay-receiver")),
		now:   time.Now,
		byDID: make(map[domain.DID][]SyncRecord),
	}
}

// Handler returns the receiver's routes.
func (rv *Receiver) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sync", rv.handleSync)
	mux.HandleFunc("GET /sync/{did}", rv.handleLookup)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Records returns what has been received for id, oldest first.
func (rv *Receiver) Records(id domain.DID) []SyncRecord {
	rv.mu.RLock()
	defer rv.mu.RUnlock()
	return append([]SyncRecord(nil), rv.byDID[id]...)
}

func (rv *Receiver) handleSync(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req SyncRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.DID == "" {
		http.Error(w, "did is required", http.StatusBadRequest)
		return
	}
	rec := SyncRecord{Target: req.Target, ReceivedAt: rv.now().Unix()}
	rv.mu.Lock()
	rv.byDID[req.DID] = append(rv.byDID[req.DID], rec)
	rv.mu.Unlock()

	rv.log.Info("relaying DID to target chain RPC",
		zap.String("did", req.DID.String()),
		zap.String("target", req.Target))
	w.WriteHeader(http.StatusAccepted)
}

func (rv *Receiver) handleLookup(w http.ResponseWriter, r *http.Request) {
	recs := rv.Records(domain.DID(r.PathValue("did")))
	if len(recs) == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(recs)
}
