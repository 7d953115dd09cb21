package constants

// RunStatus 引擎和调试器共享的运行状态
// 引擎在每条指令执行前读取该状态，决定是继续执行还是把控制权交还给调试器
type RunStatus int

const (
	// StatusUnstarted 本轮执行尚未收到第一条指令事件
	StatusUnstarted RunStatus = iota
	// StatusInit 已暂停，等待用户命令
	StatusInit
	// StatusStep 单步执行，执行一条指令后自动回到Init
	StatusStep
	// StatusOver 单步跳过，不进入调用内部
	StatusOver
	// StatusCont 持续执行，直到断点或一次性停止目标
	StatusCont
	// StatusQuit 退出调试
	StatusQuit
	// StatusDone 脚本执行完成
	StatusDone
)

func (s RunStatus) String() string {
	switch s {
	case StatusUnstarted:
		return "unstarted"
	case StatusInit:
		return "init"
	case StatusStep:
		return "step"
	case StatusOver:
		return "over"
	case StatusCont:
		return "continue"
	case StatusQuit:
		return "quit"
	case StatusDone:
		return "done"
	}
	return "unknown"
}

// DisplayMode 源码行的显示模式
type DisplayMode string

const (
	// CLIMode 普通命令行模式
	CLIMode DisplayMode = "cli"
	// EmacsMode 在列出源码行之后额外输出emacs可识别的定位转义序列
	EmacsMode DisplayMode = "emacs"
)

// 指令树中的元素种类，调试器依赖这些名字识别调用类指令和参数帧
const (
	ElementCallTemplate   = "call-template"
	ElementApplyTemplates = "apply-templates"
	ElementWithParam      = "with-param"
	ElementChoose         = "choose"
	ElementWhen           = "when"
	ElementOtherwise      = "otherwise"
	ElementIf             = "if"
	ElementVariable       = "variable"
	ElementValueOf        = "value-of"
	ElementTemplate       = "template"
)

// StoppedReasonType 程序停止类型
type StoppedReasonType string

const (
	BreakpointStopped StoppedReasonType = "breakpoint"
	StepStopped       StoppedReasonType = "step"
	EntryStopped      StoppedReasonType = "entry"
	ExitedNormally    StoppedReasonType = "exited-normally"
)

// DebugEventType 事件镜像中向外广播的事件类型
type DebugEventType string

const (
	StoppedEvent    DebugEventType = "stopped"
	ContinuedEvent  DebugEventType = "continued"
	BreakpointEvent DebugEventType = "breakpoint"
	ExitedEvent     DebugEventType = "exited"
)

// BreakpointReasonType 断点改变类型
type BreakpointReasonType string

const (
	NewType     BreakpointReasonType = "new"
	RemovedType BreakpointReasonType = "removed"
)
