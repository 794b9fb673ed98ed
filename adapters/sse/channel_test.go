package sse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"uoauth/adapters/sse"
)

func TestChannel(t *testing.T) {
	ch := sse.NewChannel[sse.Event](4)

	sub := ch.Subscribe()
	assert.NotNil(t, sub)

	msg := sse.Event{Type: sse.EventAuthAttempt, Data: `{"success":true}`}
	assert.Zero(t, ch.Broadcast(msg))

	select {
	case received := <-sub:
		assert.Equal(t, msg, received)
	case <-time.After(time.Second):
		t.Fatal("did not receive message in time")
	}

	ch.Unsubscribe(sub)
	_, ok := <-sub
	assert.False(t, ok, "channel should be closed")
	assert.True(t, ch.IsIdle(), "channel should be idle")
}

func TestChannel_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	ch := sse.NewChannel[int](2)
	slow := ch.Subscribe()
	fast := ch.Subscribe()

	dropped := 0
	for i := 0; i < 3; i++ {
		dropped += ch.Broadcast(i)
		if i < 2 {
			// fast 訂閱者即時讀取
			assert.Equal(t, i, <-fast)
		}
	}
	// 第三則訊息 slow 的緩衝區已滿
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 2, <-fast)
	assert.Equal(t, 0, <-slow)
	assert.Equal(t, 1, <-slow)

	ch.UnsubscribeAll()
	assert.True(t, ch.IsIdle())
}
