// Package metrics exposes Prometheus counters for the encryption core.
//
// All methods are safe on a nil receiver, so instrumentation stays optional:
// callers that never pass a registerer pay nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the counters the core maintains. Construct with New; a
// nil *Metrics disables collection.
type Metrics struct {
	encrypted       prometheus.Counter
	decrypted       prometheus.Counter
	decryptFailures prometheus.Counter
	replaySuspected prometheus.Counter
	unlockFailures  prometheus.Counter
}

// New registers the core's counters with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		encrypted: f.NewCounter(prometheus.CounterOpts{
			Name: "e2ecore_messages_encrypted_total",
			Help: "Messages successfully encrypted.",
		}),
		decrypted: f.NewCounter(prometheus.CounterOpts{
			Name: "e2ecore_messages_decrypted_total",
			Help: "Messages successfully decrypted.",
		}),
		decryptFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "e2ecore_decrypt_failures_total",
			Help: "Envelopes that failed authentication or decryption.",
		}),
		replaySuspected: f.NewCounter(prometheus.CounterOpts{
			Name: "e2ecore_replay_suspected_total",
			Help: "Decrypted envelopes flagged as suspected replays.",
		}),
		unlockFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "e2ecore_vault_unlock_failures_total",
			Help: "Vault unlock attempts rejected for a bad passphrase.",
		}),
	}
}

func (m *Metrics) Encrypted() {
	if m != nil {
		m.encrypted.Inc()
	}
}

func (m *Metrics) Decrypted() {
	if m != nil {
		m.decrypted.Inc()
	}
}

func (m *Metrics) DecryptFailed() {
	if m != nil {
		m.decryptFailures.Inc()
	}
}

func (m *Metrics) ReplaySuspected() {
	if m != nil {
		m.replaySuspected.Inc()
	}
}

func (m *Metrics) UnlockFailed() {
	if m != nil {
		m.unlockFailures.Inc()
	}
}
