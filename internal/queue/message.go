package queue

import "encoding/json"

// MessageVersion is the current payload schema version.
const MessageVersion = 1

// Message is the payload sent to the analysis worker. Delivery is
// at-least-once; consumers must tolerate redelivery for the same log id.
type Message struct {
	LogID      string   `json:"logId"`
	RequestID  string   `json:"requestId"`
	FilePaths  []string `json:"filePaths"`
	Query      *string  `json:"query,omitempty"`
	EnqueuedAt string   `json:"enqueuedAt"`
	Version    int      `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
