package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fansqz/template-debugger/constants"
	e "github.com/fansqz/template-debugger/error"
	"github.com/fansqz/template-debugger/protocol"
)

// cmdBreak break [loc]
func cmdBreak(d *Debugger, line string, argv []string) {
	spec := arg(argv, 1)

	node := d.getNode(spec)
	if node == nil {
		d.output("Target \"%s\" is not defined", spec)
		return
	}

	if d.checkBreakpoint(node, false) {
		d.output("Duplicate breakpoint")
		return
	}

	// 不带参数时断在当前指令上，保存解析后的位置供reload重新绑定
	if spec == "" {
		spec = fmt.Sprintf("%s:%d", node.URL(), lineNo(node))
	}

	d.bpNumber++
	bp := &Breakpoint{
		Num:  d.bpNumber,
		Inst: node,
		Spec: spec,
		Gen:  d.script.Generation,
	}
	d.breakpoints = append(d.breakpoints, bp)

	d.output("Breakpoint %d at file %s, line %d",
		bp.Num, node.URL(), lineNo(node))
	d.notify(protocol.NewBreakpointEvent(constants.NewType, bp.Num,
		node.URL(), lineNo(node)))
}

// cmdContinue continue [loc]
func cmdContinue(d *Debugger, line string, argv []string) {
	if spec := arg(argv, 1); spec != "" {
		node := d.getNode(spec)
		if node == nil {
			d.output("Unknown location: %s", spec)
			return
		}
		// 一次性停止目标，命中一次即清除
		d.stopAt = node
	}

	d.engine.SetRunStatus(constants.StatusCont)
	d.displayPending = true
	d.notify(protocol.NewContinuedEvent())
}

// cmdDelete delete [num]
func cmdDelete(d *Debugger, line string, argv []string) {
	spec := arg(argv, 1)

	// 不带参数时确认后清空全部断点；编号计数保留，编号不复用
	if spec == "" {
		answer, err := d.console.ReadLine("Delete all breakpoints? (yes/no) ")
		if err != nil {
			return
		}
		answer = strings.TrimSpace(answer)
		if answer != "y" && answer != "yes" {
			return
		}
		d.breakpoints = nil
		d.output("Deleted all breakpoints")
		return
	}

	num, err := strconv.Atoi(spec)
	if err != nil || num <= 0 {
		d.output("Invalid breakpoint number")
		return
	}

	for i, bp := range d.breakpoints {
		if bp.Num == uint(num) {
			d.breakpoints = append(d.breakpoints[:i], d.breakpoints[i+1:]...)
			d.output("Deleted breakpoint '%d'", num)
			d.notify(protocol.NewBreakpointEvent(constants.RemovedType,
				bp.Num, bp.Inst.URL(), lineNo(bp.Inst)))
			return
		}
	}

	d.output("Breakpoint '%d' not found", num)
}

// cmdFinish finish：跑到最近的模板调用返回为止
func cmdFinish(d *Debugger, line string, argv []string) {
	if !d.markFinishFrame() {
		d.output("template not found")
		return
	}
	d.engine.SetRunStatus(constants.StatusCont)
	d.displayPending = true
	d.notify(protocol.NewContinuedEvent())
}

// cmdHelp help
func cmdHelp(d *Debugger, line string, argv []string) {
	d.output("Supported commands:")
	for i := range cmdTable {
		if cmdTable[i].help != "" {
			d.output("  %s", cmdTable[i].help)
		}
	}
}

// cmdInfo info [breakpoints|locals|profile]
func cmdInfo(d *Debugger, line string, argv []string) {
	switch arg(argv, 1) {
	case "", "breakpoints":
		if len(d.breakpoints) == 0 {
			d.output("No breakpoints")
			return
		}
		d.output("List of breakpoints:")
		for _, bp := range d.breakpoints {
			if bp.Inst == nil {
				d.output("    #%d at \"%s\" (unresolved)", bp.Num, bp.Spec)
				continue
			}
			d.output("    #%d breakpoint at file %s, line %d",
				bp.Num, bp.Inst.URL(), lineNo(bp.Inst))
		}

	case "locals":
		d.infoLocals()

	case "profile":
		if d.profiler == nil {
			d.output("profiler not available")
			return
		}
		d.profiler.Report(false)

	default:
		d.output("invalid option: %s", arg(argv, 1))
	}
}

// infoLocals 显示栈顶帧的局部变量区间
func (d *Debugger) infoLocals() {
	frame := d.frames.top()
	if frame == nil {
		d.output("no frame")
		return
	}
	if frame.varsStart < 0 {
		d.output("#%d %s: locals unresolved",
			frame.depth, templateInfo(frame.template))
		return
	}

	stop := frame.varsStop
	if stop < 0 || (d.ctxt != nil && stop > d.ctxt.VarsLen()) {
		stop = d.ctxt.VarsLen()
	}
	if d.ctxt == nil || frame.varsStart >= stop {
		d.output("#%d %s: no locals",
			frame.depth, templateInfo(frame.template))
		return
	}
	for _, v := range d.ctxt.Vars[frame.varsStart:stop] {
		d.output("    $%s = %s", v.Name, formatValue(v.Value))
	}
}

// cmdList list [loc]
func cmdList(d *Debugger, line string, argv []string) {
	node := d.getNode(arg(argv, 1))
	if node == nil {
		return
	}

	if node.Doc == nil {
		d.output("target lacks filename: %s", arg(argv, 1))
		return
	}
	lineno := lineNo(node)
	d.outputScriptLines(node.URL(), lineno, lineno+10)
}

// cmdMode mode cli|emacs
func cmdMode(d *Debugger, line string, argv []string) {
	switch arg(argv, 1) {
	case "emacs":
		d.mode = constants.EmacsMode
	case "cli":
		d.mode = constants.CLIMode
	}
}

// cmdNext next：当前指令是调用就按over处理，否则按step处理
func cmdNext(d *Debugger, line string, argv []string) {
	if isCallInstruction(d.inst) {
		cmdOver(d, line, argv)
		return
	}
	cmdStep(d, line, argv)
}

// cmdOver over：实际的弹出即停帧由下一次帧进入钩子接管
func cmdOver(d *Debugger, line string, argv []string) {
	d.overPending = true
	d.engine.SetRunStatus(constants.StatusOver)
	d.displayPending = true
	d.notify(protocol.NewContinuedEvent())
}

// cmdStep step
func cmdStep(d *Debugger, line string, argv []string) {
	d.engine.SetRunStatus(constants.StatusStep)
	d.displayPending = true
	d.notify(protocol.NewContinuedEvent())
}

// cmdPrint print <expr>
func cmdPrint(d *Debugger, line string, argv []string) {
	// 去掉命令名，剩下的整体是表达式
	expr := strings.TrimSpace(strings.TrimPrefix(line, argv[0]))
	if expr == "" {
		d.output("missing expression")
		return
	}

	if d.ctxt == nil || d.ctxt.Evaluator == nil {
		d.output("%s", e.ErrNoEvaluator)
		return
	}

	value, err := d.ctxt.Evaluator.Evaluate(d.ctxt, d.node, expr)
	if err != nil {
		d.output("invalid expression: %s", err)
		return
	}
	d.outputValue(value)
}

// cmdProfile profile [on|off|clear|report|brief]
func cmdProfile(d *Debugger, line string, argv []string) {
	if d.profiler == nil {
		d.output("profiler not available")
		return
	}

	switch arg(argv, 1) {
	case "":
		// 无参数则在开关之间切换
		if d.profiling {
			d.profiling = false
			d.output("Disabling profiler")
		} else {
			d.profiling = true
			d.output("Enabling profiler")
		}
	case "on", "yes", "enable":
		d.profiling = true
		d.output("Enabling profiler")
	case "off", "no", "disable":
		d.profiling = false
		d.output("Disabling profiler")
	case "clear":
		d.profiler.Clear()
		d.output("Cleared profile data")
	case "report":
		d.profiler.Report(false)
	case "brief":
		d.profiler.Report(true)
	default:
		d.output("invalid setting: %s", arg(argv, 1))
	}
}

// cmdCallFlow callflow [on|off]
func cmdCallFlow(d *Debugger, line string, argv []string) {
	enable := !d.callFlow

	switch spec := arg(argv, 1); spec {
	case "":
	case "on", "yes", "enable":
		enable = true
	case "off", "no", "disable":
		enable = false
	default:
		d.output("invalid setting: %s", spec)
		return
	}

	d.callFlow = enable
	if enable {
		d.output("Enabling callflow")
	} else {
		d.output("Disabling callflow")
	}
}

// cmdWhere where / bt
func cmdWhere(d *Debugger, line string, argv []string) {
	num := 0
	for i := 0; i < d.frames.size(); i++ {
		frame := d.frames.at(i)

		name, tag := "", ""
		if frame.template != nil {
			if frame.template.Match != "" {
				name = frame.template.Match
			} else if frame.template.Name != "" {
				name = frame.template.Name
				tag = "()"
			}
		}
		if name == "" {
			continue
		}

		info := templateInfo(frame.template)
		if frame.inst != nil && frame.inst.Doc != nil {
			d.output("#%d %s%s from %s:%d", num, info, tag,
				baseName(frame.inst.URL()), lineNo(frame.inst))
		} else {
			d.output("#%d %s%s", num, info, tag)
		}
		num++
	}
}

// cmdRun run：重启脚本
func cmdRun(d *Debugger, line string, argv []string) {
	if d.running() {
		answer, err := d.console.ReadLine("Restart the script? (yes/no) ")
		if err != nil {
			return
		}
		answer = strings.TrimSpace(answer)
		if answer != "y" && answer != "yes" {
			return
		}
	}

	d.restartPending = true
	d.contAfterRestart = true
	d.engine.Stop()
	d.engine.SetRunStatus(constants.StatusQuit)
}

// cmdReload reload：重新解析脚本后重启
func cmdReload(d *Debugger, line string, argv []string) {
	if d.running() {
		answer, err := d.console.ReadLine("Reload the script? (yes/no) ")
		if err != nil {
			return
		}
		answer = strings.TrimSpace(answer)
		if answer != "y" && answer != "yes" {
			return
		}
	}

	d.reloadPending = true
	d.engine.Stop()
	d.engine.SetRunStatus(constants.StatusQuit)
}

// cmdQuit quit
func cmdQuit(d *Debugger, line string, argv []string) {
	if d.running() {
		answer, err := d.console.ReadLine(
			"The script is running. Exit anyway? (yes/no) ")
		if err != nil {
			return
		}
		answer = strings.TrimSpace(answer)
		if answer != "y" && answer != "yes" {
			return
		}
	}

	d.engine.SetRunStatus(constants.StatusQuit)
	d.engine.Stop()
}
