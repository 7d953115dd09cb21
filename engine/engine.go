package engine

import (
	"github.com/fansqz/template-debugger/constants"
)

// Engine 调试器依附的变换引擎
// 引擎拥有指令树、变换上下文和变量表，调试器只通过该接口与其协作
type Engine interface {
	// GetRunStatus 读取共享运行状态
	GetRunStatus() constants.RunStatus
	// SetRunStatus 写入共享运行状态
	SetRunStatus(status constants.RunStatus)
	// Stop 请求引擎提前结束本轮执行
	Stop()
	// Script 当前加载的顶层脚本
	Script() *Script
}

// Hooks 引擎在执行过程中回调调试器的三个钩子
// 三个钩子都在引擎的执行线程上同步调用，钩子返回前引擎不会继续执行
type Hooks interface {
	// AddFrame 进入一次模板或初始化调用之前回调
	// 返回true表示调试器跟踪该帧，之后引擎必须配对回调DropFrame
	// template为空表示全局变量初始化
	AddFrame(template *Template, inst *Node) bool
	// DropFrame 与AddFrame配对，调用结束时回调
	DropFrame()
	// Handler 每条指令执行前回调
	// inst不会为空；node和template仅在全局变量初始化时为空
	Handler(inst *Node, node *Node, template *Template, ctxt *TransformContext)
}
