package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"e2ecore"
)

type keyRecord struct {
	Identity  string `json:"identity"`
	PublicKey string `json:"public_key"`
}

type directory struct {
	mu   sync.RWMutex
	keys map[string]string // identity -> base58 public key

	lookups prometheus.Counter
	misses  prometheus.Counter
}

func newDirectory(reg prometheus.Registerer) *directory {
	f := promauto.With(reg)
	return &directory{
		keys: make(map[string]string),
		lookups: f.NewCounter(prometheus.CounterOpts{
			Name: "directoryd_lookups_total",
			Help: "Key lookups served.",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name: "directoryd_misses_total",
			Help: "Lookups for identities without a published key.",
		}),
	}
}

func (d *directory) register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var rec keyRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if rec.Identity == "" {
		http.Error(w, "identity required", http.StatusBadRequest)
		return
	}
	if _, err := e2ecore.ParsePublicKey(rec.PublicKey); err != nil {
		http.Error(w, "invalid public key", http.StatusBadRequest)
		return
	}
	d.mu.Lock()
	d.keys[rec.Identity] = rec.PublicKey
	d.mu.Unlock()
	slog.Info("key published", "identity", rec.Identity)
	w.WriteHeader(http.StatusNoContent)
}

func (d *directory) lookup(w http.ResponseWriter, r *http.Request) {
	identity := strings.TrimPrefix(r.URL.Path, "/keys/")
	d.lookups.Inc()

	d.mu.RLock()
	key, ok := d.keys[identity]
	d.mu.RUnlock()
	if !ok {
		d.misses.Inc()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(keyRecord{Identity: identity, PublicKey: key})
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	reg := prometheus.NewRegistry()
	dir := newDirectory(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		dir.register(w, r)
	})
	mux.HandleFunc("/keys/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		dir.lookup(w, r)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	slog.Info("directory listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
