package main

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/protocol"
	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
)

// TestConvertEvent 调试事件到DAP事件词汇表的映射
func TestConvertEvent(t *testing.T) {
	msg := convertEvent(
		protocol.NewStoppedEvent(constants.StepStopped, "walk.tmpl", 2))
	stopped, ok := msg.(*dap.StoppedEvent)
	assert.True(t, ok)
	assert.Equal(t, "stopped", stopped.Event.Event)
	assert.Equal(t, "step", stopped.Body.Reason)
	assert.Equal(t, "walk.tmpl", stopped.Body.Text)

	msg = convertEvent(
		protocol.NewBreakpointEvent(constants.NewType, 1, "walk.tmpl", 7))
	bp, ok := msg.(*dap.BreakpointEvent)
	assert.True(t, ok)
	assert.Equal(t, "new", bp.Body.Reason)
	assert.Equal(t, 1, bp.Body.Breakpoint.Id)
	assert.Equal(t, 7, bp.Body.Breakpoint.Line)
	assert.True(t, bp.Body.Breakpoint.Verified)

	_, ok = convertEvent(protocol.NewContinuedEvent()).(*dap.ContinuedEvent)
	assert.True(t, ok)

	exited, ok := convertEvent(protocol.NewExitedEvent(0)).(*dap.ExitedEvent)
	assert.True(t, ok)
	assert.Equal(t, 0, exited.Body.ExitCode)
}

// TestEventServerBroadcast 镜像把停住事件按DAP编码广播给已连接的客户端
func TestEventServerBroadcast(t *testing.T) {
	s := NewEventServer()
	assert.Nil(t, s.Start("0"))
	defer s.Close()

	conn, err := net.Dial("tcp", s.listener.Addr().String())
	assert.Nil(t, err)
	defer conn.Close()

	// 等accept协程登记这条连接
	for i := 0; i < 100; i++ {
		s.mutex.Lock()
		registered := len(s.conns)
		s.mutex.Unlock()
		if registered > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.Broadcast(
		protocol.NewStoppedEvent(constants.BreakpointStopped, "walk.tmpl", 7))

	msg, err := dap.ReadProtocolMessage(bufio.NewReader(conn))
	assert.Nil(t, err)
	stopped, ok := msg.(*dap.StoppedEvent)
	assert.True(t, ok)
	assert.Equal(t, "breakpoint", stopped.Body.Reason)
	assert.Equal(t, "walk.tmpl", stopped.Body.Text)
}
