package debugger

import (
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/engine"
	"github.com/sirupsen/logrus"
)

// stackFrame 调用栈中的一帧
// 帧由调用栈独占所有，AddFrame创建，配对的DropFrame销毁
type stackFrame struct {
	depth    int
	template *engine.Template // 为空表示全局变量初始化
	inst     *engine.Node     // 调用点指令
	caller   *engine.Node     // 调用发生时正在执行的指令

	// 局部变量在引擎变量表中的区间[start, stop)，-1表示尚未确定
	// 该区间在之后的指令回调里回填，只用于显示，不保证精确
	varsStart int
	varsStop  int

	stopWhenPop bool // 弹出该帧时停住
	isParam     bool // with-param参数帧，不参与over/finish
}

// callStack 镜像引擎真实调用嵌套的调用栈，严格后进先出
type callStack struct {
	list *arraylist.List
}

func newCallStack() *callStack {
	return &callStack{list: arraylist.New()}
}

func (s *callStack) push(f *stackFrame) {
	s.list.Add(f)
}

func (s *callStack) pop() *stackFrame {
	size := s.list.Size()
	if size == 0 {
		return nil
	}
	v, _ := s.list.Get(size - 1)
	s.list.Remove(size - 1)
	return v.(*stackFrame)
}

func (s *callStack) top() *stackFrame {
	return s.at(s.list.Size() - 1)
}

// at 自底向上第i帧，越界返回nil
func (s *callStack) at(i int) *stackFrame {
	if i < 0 || i >= s.list.Size() {
		return nil
	}
	v, _ := s.list.Get(i)
	return v.(*stackFrame)
}

func (s *callStack) size() int {
	return s.list.Size()
}

func (s *callStack) clear() {
	s.list.Clear()
}

// AddFrame 帧进入钩子，决定是否把这次调用作为真实栈帧跟踪
// 返回false表示不跟踪，引擎不会再回调配对的DropFrame
func (d *Debugger) AddFrame(template *engine.Template, inst *engine.Node) bool {
	logrus.Debugf("addFrame: template [%s], inst %s/%d (cur %s)",
		templateInfo(template), inst.QName(), lineNo(inst), d.inst.QName())

	// 引擎对未解析的调用会报出空指令，防御性拒绝
	if inst == nil {
		logrus.Warn("addFrame: nil instruction, frame not tracked")
		return false
	}

	// 同一次逻辑调用引擎会报两次帧进入：外层分发一次，命中模板后再一次。
	// 新指令与刚看到的当前指令相同且是调用类指令时，跳过内层那次
	if top := d.frames.top(); top != nil && top.inst == inst &&
		inst == d.inst && isCallInstruction(inst) {
		logrus.Debugf("addFrame: duplicate frame for %s:%d, skipped",
			inst.URL(), lineNo(inst))
		return false
	}

	if d.callFlow {
		d.callFlowLine("enter", template, inst)
	}

	frame := &stackFrame{
		depth:     d.stackDepth,
		template:  template,
		inst:      inst,
		caller:    d.inst,
		varsStart: -1,
		varsStop:  -1,
		isParam:   inst.Name == constants.ElementWithParam,
	}

	// over表示"跑到这次调用的帧被弹出为止"，由第一个非参数帧接管
	if !frame.isParam && !isInternalFrame(inst) && d.overPending {
		d.overPending = false
		frame.stopWhenPop = true
		d.engine.SetRunStatus(constants.StatusCont)
	}

	d.frames.push(frame)
	d.stackDepth++
	// 变量区间等下一次带上下文的指令回调再回填
	d.varsPatchPending = true

	return true
}

// DropFrame 帧退出钩子，弹出最近压入的帧
func (d *Debugger) DropFrame() {
	frame := d.frames.pop()
	if frame == nil {
		// 引擎报了没有配对进入的退出，忽略
		logrus.Warn("dropFrame: empty call stack")
		return
	}

	logrus.Debugf("dropFrame: [%s], inst %s (line %d%s)",
		templateInfo(frame.template), frame.inst.QName(), lineNo(frame.inst),
		stopWhenPopTag(frame))

	if frame.stopWhenPop {
		d.engine.SetRunStatus(constants.StatusInit)
		d.displayPending = true
		d.stopPending = constants.StepStopped
	}

	d.stackDepth--

	if d.callFlow {
		d.callFlowLine("exit", frame.template, frame.inst)
	}

	// 弹帧之后控制权回到另一个调用点，上一条指令不再可比
	d.lastInst = nil
}

// patchVarScopes 延迟回填变量区间
// 帧进入钩子拿不到变换上下文，新帧的局部变量起点只能等下一次带上下文的
// 指令回调时用当时的变量表长度记下；同一观测值用来闭合更早帧的区间，
// 最多往回两帧，且绝不改动已经闭合的区间
func (d *Debugger) patchVarScopes(ctxt *engine.TransformContext) {
	if !d.varsPatchPending || ctxt == nil {
		return
	}
	d.varsPatchPending = false

	n := ctxt.VarsLen()
	size := d.frames.size()

	top := d.frames.at(size - 1)
	if top == nil {
		return
	}
	if top.varsStart < 0 {
		top.varsStart = n
	}

	for i := size - 2; i >= size-3 && i >= 0; i-- {
		frame := d.frames.at(i)
		if frame.varsStop >= 0 {
			continue
		}
		if frame.varsStart >= 0 && frame.varsStart <= n {
			frame.varsStop = n
			break
		}
	}
}

// markFinishFrame 自顶向下找最近的模板调用帧并标记弹出即停
// 参数帧和if/choose这类结构性帧不算调用，要继续往下找
func (d *Debugger) markFinishFrame() bool {
	for i := d.frames.size() - 1; i >= 0; i-- {
		frame := d.frames.at(i)
		if frame.template != nil && !frame.isParam &&
			!isInternalFrame(frame.inst) {
			frame.stopWhenPop = true
			return true
		}
	}
	return false
}

func stopWhenPopTag(f *stackFrame) string {
	if f.stopWhenPop {
		return " stopwhenpop"
	}
	return ""
}

// isCallInstruction 是否为调用类指令
func isCallInstruction(inst *engine.Node) bool {
	if inst == nil {
		return false
	}
	switch inst.Name {
	case constants.ElementCallTemplate, constants.ElementApplyTemplates:
		return true
	}
	return false
}

// isInternalFrame 条件分支这类结构性帧，over不应把它们当作调用目标
func isInternalFrame(inst *engine.Node) bool {
	switch inst.Name {
	case constants.ElementChoose, constants.ElementWhen,
		constants.ElementOtherwise, constants.ElementIf:
		return true
	}
	return false
}

func lineNo(n *engine.Node) int {
	if n == nil {
		return 0
	}
	return n.Line
}
