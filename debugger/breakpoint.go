package debugger

import (
	"strconv"
	"strings"

	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/engine"
	"github.com/sirupsen/logrus"
)

// Breakpoint 绑定到指令引用上的断点
// 编号从1开始单调分配，会话内删除后不复用；
// 重复检测的依据是目标指令，不是编号
type Breakpoint struct {
	Num  uint
	Inst *engine.Node
	Spec string // 创建时用户输入的位置描述，reload后用它重新解析
	Gen  uint64 // 解析Inst时脚本的代数，与当前脚本不一致时断点失效
}

// Breakpoints 当前断点列表的快照，供事件镜像和info命令使用
func (d *Debugger) Breakpoints() []*Breakpoint {
	out := make([]*Breakpoint, len(d.breakpoints))
	copy(out, d.breakpoints)
	return out
}

// checkBreakpoint 检查指令是否命中断点或一次性停止目标
// reached为true表示指令真的要执行了：命中会切到Init并打印到达消息，
// 一次性目标命中后即清除；reached为false只做重复检测，没有副作用
func (d *Debugger) checkBreakpoint(node *engine.Node, reached bool) bool {
	if node == nil {
		return false
	}

	if d.stopAt != nil && d.stopAt == node {
		if reached {
			d.output("Reached stop at %s:%d", node.URL(), lineNo(node))
			d.stopAt = nil
			d.stopped(constants.BreakpointStopped)
		}
		return true
	}

	for _, bp := range d.breakpoints {
		if bp.Inst == node && bp.Gen == d.script.Generation {
			if reached {
				d.output("Reached breakpoint %d, at %s:%d",
					bp.Num, node.URL(), lineNo(node))
				d.stopped(constants.BreakpointStopped)
			}
			return true
		}
	}

	return false
}

// stopped 切换到暂停状态并通知事件镜像
func (d *Debugger) stopped(reason constants.StoppedReasonType) {
	d.engine.SetRunStatus(constants.StatusInit)
	d.displayPending = true
	d.notifyStopped(reason)
}

// rebindBreakpoints reload之后旧树上的指令引用全部失效，
// 按保存的位置描述在新脚本里重新解析；解析不到的断点保留编号但不再命中
func (d *Debugger) rebindBreakpoints() {
	for _, bp := range d.breakpoints {
		bp.Inst = d.getNode(bp.Spec)
		bp.Gen = d.script.Generation
		if bp.Inst == nil {
			d.output("Breakpoint %d at \"%s\" could not be re-resolved",
				bp.Num, bp.Spec)
			logrus.Warnf("breakpoint %d: spec %q unresolved after reload",
				bp.Num, bp.Spec)
		}
	}
}

// ---------------------------------------------------------------------------
// 位置解析
// 用户输入的位置描述有三种形式：file:line、line、模板名。
// 带冒号的先按file:line解析，失败再整体当模板名；
// 不带冒号的先按当前文件里的行号解析，失败再当模板名。

// getNode 把位置描述解析成指令树中的具体节点，解析失败返回nil
// 描述为空表示当前指令
func (d *Debugger) getNode(spec string) *engine.Node {
	if spec == "" {
		return d.inst
	}

	if strings.Contains(spec, ":") {
		node := d.getScriptNode(spec)
		if node == nil {
			// 不是 foo:34 的话，也许是 foo:bar 这样的模板名
			node = d.script.FindTemplate(spec)
		}
		return node
	}

	if lineno, err := strconv.Atoi(spec); err == nil && lineno > 0 {
		if d.inst != nil {
			return d.getNodeByFilename(d.inst.URL(), lineno)
		}
		if d.script != nil && d.script.Doc != nil {
			return d.getNodeByFilename(d.script.Doc.URL, lineno)
		}
		return nil
	}

	return d.script.FindTemplate(spec)
}

// getScriptNode 解析 file:line 形式的位置描述
func (d *Debugger) getScriptNode(spec string) *engine.Node {
	idx := strings.Index(spec, ":")
	file := spec[:idx]
	lineno, err := strconv.Atoi(spec[idx+1:])
	if err != nil || lineno <= 0 {
		return nil
	}

	script := findFile(d.script, file)
	if script == nil {
		return nil
	}
	return getNodeByLine(script.Doc.Root, lineno)
}

func (d *Debugger) getNodeByFilename(filename string, lineno int) *engine.Node {
	script := findFile(d.script, filename)
	if script == nil {
		return nil
	}
	return getNodeByLine(script.Doc.Root, lineno)
}

// findFile 在脚本及其导入里查找文档，支持完整路径和纯文件名匹配
func findFile(script *engine.Script, filename string) *engine.Script {
	if script == nil || script.Doc == nil {
		return nil
	}

	if script.Doc.URL == filename {
		return script
	}
	if base := baseName(script.Doc.URL); base == filename {
		return script
	}

	for _, imp := range script.Imports {
		if answer := findFile(imp, filename); answer != nil {
			return answer
		}
	}
	return nil
}

// getNodeByLine 深度优先找第一个落在给定行上的节点
func getNodeByLine(node *engine.Node, lineno int) *engine.Node {
	if node == nil {
		return nil
	}
	if node.Type == engine.ElementNode && node.Line == lineno {
		return node
	}
	for _, child := range node.Children {
		if answer := getNodeByLine(child, lineno); answer != nil {
			return answer
		}
	}
	return nil
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
