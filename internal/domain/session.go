package domain

import "time"

// maxSeenIndices bounds the per-sender replay window kept in session state.
const MaxSeenIndices = 1024

// ReceiveState tracks what we have seen from one sender key epoch.
type ReceiveState struct {
	// HighWater is one past the highest index accepted from this sender key.
	HighWater uint64 `json:"high_water"`
	// Seen holds recently accepted indices below the high-water mark, so
	// out-of-order delivery is distinguishable from replay.
	Seen []uint64 `json:"seen,omitempty"`
}

// Observed reports whether idx was already accepted.
func (r *ReceiveState) Observed(idx uint64) bool {
	for _, s := range r.Seen {
		if s == idx {
			return true
		}
	}
	return false
}

// Mark records idx as accepted, trimming the window when it grows too large.
func (r *ReceiveState) Mark(idx uint64) {
	if idx >= r.HighWater {
		r.HighWater = idx + 1
	}
	r.Seen = append(r.Seen, idx)
	if len(r.Seen) > MaxSeenIndices {
		r.Seen = r.Seen[len(r.Seen)-MaxSeenIndices:]
	}
}

// SessionState is the persistable per-conversation state: one record per
// (local identity, remote identity) pair. Receive bookkeeping is keyed by the
// sender's public key so rotations on the remote side keep their own counters.
type SessionState struct {
	Peer            IdentityID               `json:"peer"`
	RemotePublicKey X25519Public             `json:"remote_public_key"`
	SendIndex       uint64                   `json:"send_index"`
	Received        map[string]*ReceiveState `json:"received,omitempty"` // keyed by base58 sender key
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ReceiveFor returns the receive bookkeeping for a sender key, creating it
// lazily.
func (s *SessionState) ReceiveFor(sender X25519Public) *ReceiveState {
	if s.Received == nil {
		s.Received = make(map[string]*ReceiveState)
	}
	key := sender.String()
	rs, ok := s.Received[key]
	if !ok {
		rs = &ReceiveState{}
		s.Received[key] = rs
	}
	return rs
}
