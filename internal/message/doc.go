// Package message implements the per-conversation encryption contract.
//
// Each outgoing message consumes one index from the conversation's monotonic
// send counter; the index travels inside the envelope, so decrypting out of
// storage order never desynchronizes session state. Incoming envelopes are
// checked against a per-sender high-water mark: a non-advancing index is
// flagged as a suspected replay but the plaintext is still surfaced, because
// ordering glitches from concurrent devices are expected.
package message
