package sse

import (
	"encoding/json"
	"fmt"
)

// 推送給瀏覽器的事件名稱
const (
	EventConnected      = "connected"
	EventAuthAttempt    = "auth_attempt"
	EventAuthError      = "auth_error"
	EventAuthComplete   = "auth_complete"
	EventGroupTransfers = "group_transfers"
)

// Event 是一則 SSE 事件，Data 為 JSON 字串
type Event struct {
	Type string `msgpack:"type"`
	Data string `msgpack:"data"`
}

// NewEvent 將 payload 編碼成 JSON 並建立事件
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("[sse.NewEvent] Fail to marshal payload, type=%s, err=%w", eventType, err)
	}
	return Event{Type: eventType, Data: string(data)}, nil
}

// PublishRequest 表示一個發布請求，包含頻道名稱和訊息。
type PublishRequest[T any] struct {
	Channel string `msgpack:"channel"`
	Message T      `msgpack:"message"`
}
