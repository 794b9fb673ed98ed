package provision

import (
	"context"
	"encoding/json"
	"fmt"

	"uoauth/adapters/redis"
)

// DefaultStream 是 bot 監聽的 stream 名稱
const DefaultStream = "discord_permissions"

const (
	EventAssign = "assign"
	EventRevoke = "revoke"
)

// RoleEvent 是寫入 stream 的一筆角色變更事件
type RoleEvent struct {
	Event string
	ID    string
	Roles []string
}

// EncodeRoleEvent 將事件轉為 stream 欄位，roles 以 JSON 陣列儲存讓 bot 端不需要 msgpack
func EncodeRoleEvent(e RoleEvent) (map[string]any, error) {
	values := map[string]any{
		"event": e.Event,
		"id":    e.ID,
	}
	if e.Roles != nil {
		roles, err := json.Marshal(e.Roles)
		if err != nil {
			return nil, fmt.Errorf("fail to marshal roles, err=%w", err)
		}
		values["roles"] = string(roles)
	}
	return values, nil
}

// DecodeRoleEvent 是 EncodeRoleEvent 的反向操作
func DecodeRoleEvent(values map[string]any) (RoleEvent, error) {
	var e RoleEvent
	event, ok := values["event"].(string)
	if !ok {
		return e, fmt.Errorf("missing event field")
	}
	id, ok := values["id"].(string)
	if !ok {
		return e, fmt.Errorf("missing id field")
	}
	e.Event, e.ID = event, id
	if raw, ok := values["roles"].(string); ok {
		if err := json.Unmarshal([]byte(raw), &e.Roles); err != nil {
			return e, fmt.Errorf("fail to unmarshal roles, err=%w", err)
		}
	}
	return e, nil
}

// StreamProvisioner 把角色變更寫入 redis stream，由 bot 自行消費
type StreamProvisioner struct {
	producer redis.IProducer[RoleEvent]
}

// NewStreamProvisioner 建立並啟動 producer
func NewStreamProvisioner(producer redis.IProducer[RoleEvent]) *StreamProvisioner {
	producer.Start()
	return &StreamProvisioner{producer: producer}
}

// Provision 先送出 revoke 再送出 assign，bot 依 stream 順序處理
func (p *StreamProvisioner) Provision(ctx context.Context, req Request) error {
	const op = "provision.StreamProvisioner.Provision"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("[%s] err=%w", op, err)
	}

	switch {
	case req.RevokesAll():
		if err := p.producer.Publish(RoleEvent{Event: EventRevoke, ID: req.ID}); err != nil {
			return fmt.Errorf("[%s] Fail to publish revoke, id=%s, err=%w", op, req.ID, err)
		}
	case len(req.Revoke) > 0:
		if err := p.producer.Publish(RoleEvent{Event: EventRevoke, ID: req.ID, Roles: req.Revoke}); err != nil {
			return fmt.Errorf("[%s] Fail to publish revoke, id=%s, err=%w", op, req.ID, err)
		}
	}
	if len(req.Assign) > 0 {
		if err := p.producer.Publish(RoleEvent{Event: EventAssign, ID: req.ID, Roles: req.Assign}); err != nil {
			return fmt.Errorf("[%s] Fail to publish assign, id=%s, err=%w", op, req.ID, err)
		}
	}
	return nil
}

// Close 等待緩衝中的事件寫入 stream 後關閉
func (p *StreamProvisioner) Close() error {
	p.producer.Close()
	return nil
}
