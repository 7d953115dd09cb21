package debugger

import (
	"github.com/fansqz/template-debugger/console"
	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/engine"
	e "github.com/fansqz/template-debugger/error"
	"github.com/fansqz/template-debugger/protocol"
)

// NotificationCallback 调试事件回调，事件镜像用它把会话转发给外部客户端
type NotificationCallback func(event protocol.Event)

// Profiler 性能分析服务，调试器只通过开关控制它
type Profiler interface {
	// Enter 一条指令即将执行
	Enter(inst *engine.Node)
	// Exit 结束当前样本
	Exit()
	// Clear 清空已有统计
	Clear()
	// Report 输出统计报告
	Report(brief bool)
}

// Debugger 调试器状态
// 整个进程只有一个实例，所有钩子和命令处理函数都显式持有它，
// 不依赖任何包级全局变量
type Debugger struct {
	engine   engine.Engine
	console  console.Console
	profiler Profiler
	callback NotificationCallback

	script *engine.Script // 当前顶层脚本

	// 当前执行位置，全部为非拥有引用，生命周期归引擎管
	inst     *engine.Node
	node     *engine.Node
	template *engine.Template
	ctxt     *engine.TransformContext

	lastInst *engine.Node // 同行去重用的上一条指令
	stopAt   *engine.Node // continue <loc> 设置的一次性停止目标

	stopPending constants.StoppedReasonType // 待上报的停住事件原因

	frames      *callStack
	stackDepth  int
	breakpoints []*Breakpoint
	bpNumber    uint

	count int // 命令计数

	// 控制标志
	displayPending   bool // 下次进入shell前先显示当前源码行
	callFlow         bool // 输出调用流跟踪
	profiling        bool
	overPending      bool // over/next 等待下一次AddFrame接管
	inShell          bool // 重入保护
	varsPatchPending bool // 新压入的帧等待回填变量区间
	restartPending   bool
	reloadPending    bool
	contAfterRestart bool // run重启后直接继续执行，不在第一条指令停

	mode      constants.DisplayMode
	prevInput string
}

// Option 创建调试器时的可选项
type Option func(*Debugger)

// WithProfiler 挂接性能分析器
func WithProfiler(p Profiler) Option {
	return func(d *Debugger) { d.profiler = p }
}

// WithCallback 挂接事件回调
func WithCallback(cb NotificationCallback) Option {
	return func(d *Debugger) { d.callback = cb }
}

// NewDebugger 创建调试器并绑定引擎和控制台
func NewDebugger(eng engine.Engine, cons console.Console, opts ...Option) *Debugger {
	d := &Debugger{
		engine:  eng,
		console: cons,
		script:  eng.Script(),
		frames:  newCallStack(),
		mode:    constants.CLIMode,
	}
	for _, opt := range opts {
		opt(d)
	}
	// 首次停住时先显示当前行
	d.displayPending = true
	return d
}

// Register 打通引擎的运行状态并打印欢迎信息
func (d *Debugger) Register(version string) error {
	if d.engine == nil {
		return e.ErrEngineNotAttached
	}
	if d.script == nil || d.script.Doc == nil {
		return e.ErrScriptNotLoaded
	}
	d.engine.SetRunStatus(constants.StatusUnstarted)
	d.output("tdb: The Template Debugger (version %s)", version)
	d.output("Type 'help' for help")
	return nil
}

// Reload 换上重新加载的脚本，重置执行状态并重新解析既有断点
func (d *Debugger) Reload(script *engine.Script) error {
	if script == nil || script.Doc == nil {
		return e.ErrScriptNotLoaded
	}
	d.script = script
	d.ResetRun()
	d.rebindBreakpoints()
	return nil
}

// ResetRun 清理一轮执行遗留的状态，断点保留
func (d *Debugger) ResetRun() {
	d.frames.clear()
	d.stackDepth = 0
	d.inst = nil
	d.node = nil
	d.template = nil
	d.ctxt = nil
	d.lastInst = nil
	d.stopAt = nil
	d.overPending = false
	d.displayPending = true
	d.stopPending = ""
	d.engine.SetRunStatus(constants.StatusUnstarted)

	// run发起的重启直接继续跑，只被断点拦住
	if d.contAfterRestart {
		d.contAfterRestart = false
		d.displayPending = false
		d.engine.SetRunStatus(constants.StatusCont)
	}
}

// RunDone 引擎完整执行结束
func (d *Debugger) RunDone() {
	if d.engine.GetRunStatus() != constants.StatusQuit {
		d.engine.SetRunStatus(constants.StatusDone)
	}
	d.notify(protocol.NewExitedEvent(0))
}

// AfterRun 脚本执行结束后的交互循环，等待run/reload/quit
// 返回false表示会话结束
func (d *Debugger) AfterRun() bool {
	for d.engine.GetRunStatus() == constants.StatusDone {
		if err := d.shell(); err != nil {
			d.engine.SetRunStatus(constants.StatusQuit)
			return false
		}
	}
	return d.RestartPending() || d.ReloadPending()
}

// RestartPending run命令设置的重启标志，外层驱动循环读取后清除
func (d *Debugger) RestartPending() bool {
	return d.restartPending
}

// ReloadPending reload命令设置的重载标志
func (d *Debugger) ReloadPending() bool {
	return d.reloadPending
}

// ClearPending 外层驱动处理完标志后清除
func (d *Debugger) ClearPending() {
	d.restartPending = false
	d.reloadPending = false
}

// SetDisplayMode 设置源码行显示模式
func (d *Debugger) SetDisplayMode(mode constants.DisplayMode) {
	d.mode = mode
}

// Status 当前共享运行状态
func (d *Debugger) Status() constants.RunStatus {
	return d.engine.GetRunStatus()
}

// StackDepth 当前调用栈深度
func (d *Debugger) StackDepth() int {
	return d.stackDepth
}

// running 脚本是否处于一轮执行的中途
func (d *Debugger) running() bool {
	switch d.engine.GetRunStatus() {
	case constants.StatusUnstarted, constants.StatusDone, constants.StatusQuit:
		return false
	}
	return true
}

// output 所有面向用户的输出都走控制台
func (d *Debugger) output(format string, a ...interface{}) {
	d.console.WriteLine(format, a...)
}

func (d *Debugger) notify(event protocol.Event) {
	if d.callback != nil {
		d.callback(event)
	}
}
