package debugger

import (
	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/engine"
	"github.com/fansqz/template-debugger/protocol"
	"github.com/sirupsen/logrus"
)

// Handler 指令前钩子，引擎执行每条指令之前回调
// inst不会为空；node和template只在全局变量初始化时为空
func (d *Debugger) Handler(inst *engine.Node, node *engine.Node,
	template *engine.Template, ctxt *engine.TransformContext) {

	// shell里求值表达式可能让引擎再执行指令，不递归调试自己
	if d.inShell {
		return
	}

	logrus.Debugf("handler: template [%s], node %s, inst %s/%d",
		templateInfo(template), node.QName(), inst.QName(), lineNo(inst))

	// 纯文本节点永远不可停
	if inst != nil && inst.Type == engine.TextNode {
		return
	}

	status := d.engine.GetRunStatus()
	if status == constants.StatusQuit || status == constants.StatusDone {
		return
	}

	// 本轮执行的第一条指令事件
	if status == constants.StatusUnstarted {
		d.engine.SetRunStatus(constants.StatusInit)
		d.stopPending = constants.EntryStopped
	}

	// 同一条源码语句会编译出多条相邻指令，与上次停住的指令同行就继续走
	if d.sameLine(inst) {
		return
	}

	d.inst = inst
	d.node = node
	d.template = template
	d.ctxt = ctxt

	d.patchVarScopes(ctxt)

	if d.profiling && d.profiler != nil {
		d.profiler.Enter(inst)
	}

	hit := d.checkBreakpoint(inst, true)

	// over没等到任何帧进入就走到了下一条指令，说明over的不是调用，
	// 按单步处理
	if d.overPending {
		d.overPending = false
		d.engine.SetRunStatus(constants.StatusInit)
		d.stopPending = constants.StepStopped
	}

	// step/over/finish落点的停住事件在这里上报
	// 同一落点命中断点时断点事件优先，不再重复上报
	if d.stopPending != "" {
		if !hit && d.engine.GetRunStatus() == constants.StatusInit {
			d.notifyStopped(d.stopPending)
		}
		d.stopPending = ""
	}

	for {
		switch d.engine.GetRunStatus() {
		case constants.StatusInit:
			// shell返回EOF说明输入耗尽，收掉整个会话
			if err := d.shell(); err != nil {
				d.engine.SetRunStatus(constants.StatusQuit)
				return
			}
			d.lastInst = d.inst

		case constants.StatusStep:
			// 放一条指令过去，下一条再停
			d.engine.SetRunStatus(constants.StatusInit)
			d.stopPending = constants.StepStopped
			return

		case constants.StatusQuit:
			return

		default:
			// Over/Cont等状态直接把控制权还给引擎
			return
		}
	}
}

// sameLine 新指令是否还是上次停住的那条源码语句
// 引擎可能在两次回调之间改动指令树，所以除了指针还比较文档加行号
func (d *Debugger) sameLine(inst *engine.Node) bool {
	if d.lastInst == nil || inst == nil {
		return false
	}

	if d.inst == inst {
		return true
	}

	if d.inst != nil && d.inst.Doc == inst.Doc {
		lineno := lineNo(inst)
		if lineno > 0 && lineno == lineNo(d.inst) {
			return true
		}
	}

	return false
}

func (d *Debugger) notifyStopped(reason constants.StoppedReasonType) {
	if d.callback == nil {
		return
	}
	d.notify(protocol.NewStoppedEvent(reason, d.inst.URL(), lineNo(d.inst)))
}
