package model

// TransferKind is the kind of asset movement the pool asks its host to perform.
type TransferKind string

const (
	TransferSend TransferKind = "send"
	TransferMint TransferKind = "mint"
	TransferBurn TransferKind = "burn"
)

// Transfer is an instruction produced by a pool operation. Mint and burn refer to the pool share token.
type Transfer struct {
	Kind      TransferKind `json:"kind"`
	Asset     Asset        `json:"asset"`
	Recipient string       `json:"recipient,omitempty"`
	AutoStake bool         `json:"auto_stake,omitempty"`
}

// Attribute is a key/value pair describing an operation outcome.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AttributeValue returns the first value stored under key.
func AttributeValue(attrs []Attribute, key string) (string, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}
