package model

import "encoding/json"

// OperationRecord is the stored outcome of one pool operation.
type OperationRecord struct {
	Sequence    uint64      `json:"sequence"`
	Pool        string      `json:"pool"`
	Action      string      `json:"action"`
	Sender      string      `json:"sender,omitempty"`
	Timestamp   uint64      `json:"timestamp"`
	Attributes  []Attribute `json:"attributes"`
	Transfers   []Transfer  `json:"transfers"`
	StateDigest string      `json:"state_digest,omitempty"`
	Error       string      `json:"error,omitempty"`
	ProcessedAt string      `json:"processed_at"`
}

// Failed reports whether the operation was rejected.
func (r OperationRecord) Failed() bool {
	return r.Error != ""
}

// MarshalJSON keeps empty attribute and transfer lists as [] for failed operations too.
func (r OperationRecord) MarshalJSON() ([]byte, error) {
	type Alias OperationRecord
	a := Alias(r)
	if a.Attributes == nil {
		a.Attributes = []Attribute{}
	}
	if a.Transfers == nil {
		a.Transfers = []Transfer{}
	}
	return json.Marshal(a)
}
