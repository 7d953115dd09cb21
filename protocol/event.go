package protocol

import "github.com/fansqz/template-debugger/constants"

// Event 调试器通过回调向外投递的事件
type Event interface {
	EventType() constants.DebugEventType
}

// StoppedEvent
// 该event表明脚本的执行由于某些原因停住了，
// 可能是命中断点、单步完成或者弹出即停帧被弹出
type StoppedEvent struct {
	Event  constants.DebugEventType    `json:"event"`
	Reason constants.StoppedReasonType `json:"reason"`
	File   string                      `json:"file"`
	Line   int                         `json:"line"`
}

func NewStoppedEvent(reason constants.StoppedReasonType, file string, line int) *StoppedEvent {
	return &StoppedEvent{
		Event:  constants.StoppedEvent,
		Reason: reason,
		File:   file,
		Line:   line,
	}
}

func (e *StoppedEvent) EventType() constants.DebugEventType { return e.Event }

// ContinuedEvent
// 该event表明脚本的执行已经继续
type ContinuedEvent struct {
	Event constants.DebugEventType `json:"event"`
}

func NewContinuedEvent() *ContinuedEvent {
	return &ContinuedEvent{Event: constants.ContinuedEvent}
}

func (e *ContinuedEvent) EventType() constants.DebugEventType { return e.Event }

// BreakpointEvent 断点事件
// 该event指示有关断点的某些信息已更改
type BreakpointEvent struct {
	Event  constants.DebugEventType       `json:"event"`
	Reason constants.BreakpointReasonType `json:"reason"`
	Num    uint                           `json:"num"`
	File   string                         `json:"file"`
	Line   int                            `json:"line"`
}

func NewBreakpointEvent(reason constants.BreakpointReasonType, num uint,
	file string, line int) *BreakpointEvent {
	return &BreakpointEvent{
		Event:  constants.BreakpointEvent,
		Reason: reason,
		Num:    num,
		File:   file,
		Line:   line,
	}
}

func (e *BreakpointEvent) EventType() constants.DebugEventType { return e.Event }

// ExitedEvent
// 该event表明一轮脚本执行已经结束
type ExitedEvent struct {
	Event    constants.DebugEventType `json:"event"`
	ExitCode int                      `json:"exitCode"`
}

func NewExitedEvent(code int) *ExitedEvent {
	return &ExitedEvent{Event: constants.ExitedEvent, ExitCode: code}
}

func (e *ExitedEvent) EventType() constants.DebugEventType { return e.Event }
