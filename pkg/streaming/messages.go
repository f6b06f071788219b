package streaming

import (
	"encoding/json"
	"time"
)

// Message type constants matching the streaming protocol.
const (
	TypeDocumentCreated = "document_created"
	TypeDocumentUpdated = "document_updated"
	TypeDocumentTouched = "document_touched"
	TypeDocumentDeleted = "document_deleted"
	TypeVersionUpdated  = "version_updated"
	TypeVersionLocked   = "version_locked"
	TypeVersionDeleted  = "version_deleted"
	TypeAck             = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is a client's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always TypeAck
	For  string `json:"for"`  // the message type being acknowledged
}

// ChangePayload carries one document or version change.
type ChangePayload struct {
	DocumentID string    `json:"documentId"`
	Collection string    `json:"collection"`
	VersionID  string    `json:"versionId,omitempty"`
	Delta      string    `json:"delta,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
