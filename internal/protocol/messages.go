// Package protocol defines the websocket payloads exchanged with chat
// clients. Event names match the original socket wire format.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeChatMessage  MessageType = "ai-message"
	TypeChatResponse MessageType = "ai-response"
	TypeErrorEvent   MessageType = "error"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ChatMessage is the inbound user event. Content may be empty; empty input
// is a pipeline concern (it gets a canned rejection), not a protocol error.
// The user identity is never part of the payload.
type ChatMessage struct {
	Type    MessageType `json:"type"`
	Chat    string      `json:"chat"`
	Content string      `json:"content"`
}

// ChatResponse is the outbound event. It always carries the chat id of the
// request it answers, so one session can multiplex several chats.
type ChatResponse struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
	Chat    string      `json:"chat"`
}

type ErrorEvent struct {
	Type   MessageType `json:"type"`
	Chat   string      `json:"chat,omitempty"`
	Code   string      `json:"code"`
	Detail string      `json:"detail,omitempty"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeChatMessage:
		var msg ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Chat == "" {
			return nil, errors.New("invalid ai-message: missing chat")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
