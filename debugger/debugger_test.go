package debugger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fansqz/template-debugger/console"
	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/engine"
	"github.com/fansqz/template-debugger/engine/tree_engine"
	"github.com/fansqz/template-debugger/protocol"
	"github.com/stretchr/testify/assert"
)

// newTestDebugger 创建绑定参考引擎和预置输入控制台的调试器
func newTestDebugger(script *engine.Script, inputs ...string) (
	*Debugger, *tree_engine.TreeEngine, *console.BufferConsole) {
	eng := tree_engine.NewTreeEngine(script)
	cons := console.NewBufferConsole(inputs...)
	d := NewDebugger(eng, cons)
	eng.SetHooks(d)
	return d, eng, cons
}

// walkScript 构建一个主模板调用子模板的脚本，子模板有10条指令
//
//	1: template main {
//	2:     value-of 'a';
//	3:     call inner;
//	4:     value-of 'b';
//	5: }
//	6: template inner {
//	7..16: value-of ...;
//	17: }
func walkScript(url string) *engine.Script {
	doc := tree_engine.NewDocument(url)
	script := tree_engine.NewScript(doc, 1)

	main := tree_engine.Element(doc, "template", 1, nil,
		tree_engine.Element(doc, "value-of", 2,
			map[string]string{"select": "'a'"}),
		tree_engine.Element(doc, "call-template", 3,
			map[string]string{"name": "inner"}),
		tree_engine.Element(doc, "value-of", 4,
			map[string]string{"select": "'b'"}),
	)
	tree_engine.AddTemplate(script, "main", "/", main)

	var body []*engine.Node
	for i := 0; i < 10; i++ {
		body = append(body, tree_engine.Element(doc, "value-of", 7+i,
			map[string]string{"select": "'x'"}))
	}
	inner := tree_engine.Element(doc, "template", 6, nil, body...)
	tree_engine.AddTemplate(script, "inner", "", inner)

	return script
}

// stops 统计一次会话里shell停住的次数
func stops(cons *console.BufferConsole) int {
	count := 0
	for _, p := range cons.Prompts {
		if p == prompt {
			count++
		}
	}
	return count
}

func writeSource(t *testing.T, dir, name, source string) string {
	url := filepath.Join(dir, name)
	err := os.WriteFile(url, []byte(source), 0644)
	assert.Nil(t, err)
	return url
}

// TestRunToCompletion 没有断点时continue一路跑完
func TestRunToCompletion(t *testing.T) {
	script := walkScript("walk.tmpl")
	d, eng, cons := newTestDebugger(script, "continue")

	eng.Execute()
	d.RunDone()

	// 只在第一条指令处停一次
	assert.Equal(t, 1, stops(cons))
	assert.Equal(t, 12, len(eng.Output))
	assert.Equal(t, 0, d.StackDepth())
}

// TestNextOverCall next在调用指令上表现为over：整个子模板跑完后才停一次
func TestNextOverCall(t *testing.T) {
	script := walkScript("walk.tmpl")
	d, eng, cons := newTestDebugger(script, "step", "step", "next", "continue")

	eng.Execute()

	// 停了四次：第1行、第2行、第3行(调用处)、第4行(调用返回后)
	assert.Equal(t, 4, stops(cons))
	assert.Equal(t, 4, d.inst.Line)
	assert.Equal(t, 0, d.StackDepth())
}

// TestOverOnNonCall over的不是调用时按单步处理
func TestOverOnNonCall(t *testing.T) {
	script := walkScript("walk.tmpl")
	_, eng, cons := newTestDebugger(script, "over", "continue")

	eng.Execute()

	// 第1行停一次，over在下一条指令又停一次
	assert.Equal(t, 2, stops(cons))
}

// TestFinish finish停在最近的模板调用返回处，而不是中途某条指令
func TestFinish(t *testing.T) {
	script := walkScript("walk.tmpl")
	d, eng, cons := newTestDebugger(script,
		"break 7", "continue", "finish", "continue")

	eng.Execute()

	assert.True(t, cons.Contains("Reached breakpoint 1, at walk.tmpl:7"))
	// 第1行停住时读了break和continue两条命令，之后断点和finish各停一次
	assert.Equal(t, 4, stops(cons))
	assert.Equal(t, 4, d.inst.Line)
}

// TestFinishInsideIf 断在if里面时finish跑到模板调用返回处，
// 不把if这样的结构性帧当成调用
func TestFinishInsideIf(t *testing.T) {
	doc := tree_engine.NewDocument("fin.tmpl")
	script := tree_engine.NewScript(doc, 1)
	main := tree_engine.Element(doc, "template", 1, nil,
		tree_engine.Element(doc, "call-template", 3,
			map[string]string{"name": "inner"}),
		tree_engine.Element(doc, "value-of", 4,
			map[string]string{"select": "'b'"}),
	)
	tree_engine.AddTemplate(script, "main", "/", main)

	inner := tree_engine.Element(doc, "template", 6, nil,
		tree_engine.Element(doc, "if", 7,
			map[string]string{"test": "true()"},
			tree_engine.Element(doc, "value-of", 8,
				map[string]string{"select": "'x'"})),
		tree_engine.Element(doc, "value-of", 10,
			map[string]string{"select": "'y'"}),
	)
	tree_engine.AddTemplate(script, "inner", "", inner)

	d, eng, cons := newTestDebugger(script,
		"break 8", "continue", "finish", "continue")

	eng.Execute()

	assert.True(t, cons.Contains("Reached breakpoint 1, at fin.tmpl:8"))
	// 第1行停住时读了break和continue两条命令，之后断点和finish各停一次
	assert.Equal(t, 4, stops(cons))
	// finish越过if结束处的第10行，停在调用返回后的第4行
	assert.Equal(t, 4, d.inst.Line)
}

// TestBreakAtTemplateOpening 断在模板起始指令上，整轮执行只命中一次
func TestBreakAtTemplateOpening(t *testing.T) {
	doc := tree_engine.NewDocument("report.tmpl")
	script := tree_engine.NewScript(doc, 1)
	main := tree_engine.Element(doc, "template", 1, nil,
		tree_engine.Element(doc, "call-template", 2,
			map[string]string{"name": "report"}),
	)
	tree_engine.AddTemplate(script, "main", "/", main)
	report := tree_engine.Element(doc, "template", 42, nil,
		tree_engine.Element(doc, "value-of", 43,
			map[string]string{"select": "'report body'"}),
	)
	tree_engine.AddTemplate(script, "report", "", report)

	_, eng, cons := newTestDebugger(script,
		"break report.tmpl:42", "continue", "continue")

	eng.Execute()

	reached := 0
	for _, out := range cons.Outputs {
		if out == "Reached breakpoint 1, at report.tmpl:42" {
			reached++
		}
	}
	assert.Equal(t, 1, reached)
	assert.Equal(t, []string{"report body"}, eng.Output)
}

// TestSameLineDedup 同一行上的两条指令只停一次
func TestSameLineDedup(t *testing.T) {
	doc := tree_engine.NewDocument("same.tmpl")
	script := tree_engine.NewScript(doc, 1)
	main := tree_engine.Element(doc, "template", 1, nil,
		tree_engine.Element(doc, "value-of", 2,
			map[string]string{"select": "'a'"}),
		tree_engine.Element(doc, "value-of", 2,
			map[string]string{"select": "'b'"}),
		tree_engine.Element(doc, "value-of", 3,
			map[string]string{"select": "'c'"}),
	)
	tree_engine.AddTemplate(script, "main", "/", main)

	_, eng, cons := newTestDebugger(script, "step", "step", "continue")

	eng.Execute()

	// 第2行的第二条指令不再停：第1行、第2行、第3行各一次
	assert.Equal(t, 3, stops(cons))
	assert.Equal(t, 3, len(eng.Output))
}

// TestEOFQuits 输入耗尽时强制退出
func TestEOFQuits(t *testing.T) {
	script := walkScript("walk.tmpl")
	d, eng, cons := newTestDebugger(script)

	eng.Execute()

	assert.Equal(t, 1, stops(cons))
	assert.Equal(t, constants.StatusQuit, d.Status())
}

// TestEmptyInputRepeats 空输入重复上一条命令
func TestEmptyInputRepeats(t *testing.T) {
	script := walkScript("walk.tmpl")
	d, eng, cons := newTestDebugger(script, "step", "", "", "continue")

	eng.Execute()

	// step重复了两次：第1、2、3行各停一次，step进调用后在第6行再停一次
	assert.Equal(t, 4, stops(cons))
	assert.Equal(t, 4, d.inst.Line)
}

// TestDisplayCurrentLine 停住时显示当前源码行
func TestDisplayCurrentLine(t *testing.T) {
	dir := t.TempDir()
	source := "template main {\n    value-of 'a';\n    call inner;\n" +
		"    value-of 'b';\n}\ntemplate inner {\n    value-of 'x';\n}\n"
	url := writeSource(t, dir, "walk.tmpl", source)

	script := walkScript(url)
	_, eng, cons := newTestDebugger(script, "step", "continue")

	eng.Execute()

	assert.True(t, cons.Contains("walk.tmpl:1: template main {"))
	assert.True(t, cons.Contains("walk.tmpl:2:     value-of 'a';"))
}

// TestReentrancyGuard shell内再触发指令回调时直接忽略
func TestReentrancyGuard(t *testing.T) {
	script := walkScript("walk.tmpl")
	d, _, cons := newTestDebugger(script, "continue")

	d.inShell = true
	d.Handler(script.Templates[0].Elem, nil, nil, nil)

	assert.Nil(t, d.inst)
	assert.Equal(t, 0, stops(cons))
}

// TestContinueToLocation continue带位置时设置一次性停止目标，命中即清除
func TestContinueToLocation(t *testing.T) {
	script := walkScript("walk.tmpl")
	d, eng, cons := newTestDebugger(script, "continue 8", "continue")

	eng.Execute()

	assert.True(t, cons.Contains("Reached stop at walk.tmpl:8"))
	assert.Nil(t, d.stopAt)
	assert.Equal(t, 2, stops(cons))
}

// eventRecorder 把回调事件压成可比较的字符串序列
type eventRecorder struct {
	events []string
}

func (r *eventRecorder) record(event protocol.Event) {
	switch e := event.(type) {
	case *protocol.StoppedEvent:
		r.events = append(r.events,
			fmt.Sprintf("stopped/%s:%d", e.Reason, e.Line))
	case *protocol.ContinuedEvent:
		r.events = append(r.events, "continued")
	case *protocol.BreakpointEvent:
		r.events = append(r.events,
			fmt.Sprintf("breakpoint/%s:%d", e.Reason, e.Line))
	case *protocol.ExitedEvent:
		r.events = append(r.events, "exited")
	}
}

// TestEventCallbacks 每次停住和继续都有配对的事件：
// 首条指令上报entry，step/over落点上报step，跑完上报exited
func TestEventCallbacks(t *testing.T) {
	script := walkScript("walk.tmpl")
	eng := tree_engine.NewTreeEngine(script)
	cons := console.NewBufferConsole("step", "step", "next", "continue")
	rec := &eventRecorder{}
	d := NewDebugger(eng, cons, WithCallback(rec.record))
	eng.SetHooks(d)

	eng.Execute()
	d.RunDone()

	assert.Equal(t, []string{
		"stopped/entry:1",
		"continued",
		"stopped/step:2",
		"continued",
		"stopped/step:3",
		"continued",
		"stopped/step:4", // next跳过inner，弹出即停帧弹出后的落点
		"continued",
		"exited",
	}, rec.events)
}

// TestEventBreakpointPriority step落点同时命中断点时只上报断点事件
func TestEventBreakpointPriority(t *testing.T) {
	script := walkScript("walk.tmpl")
	eng := tree_engine.NewTreeEngine(script)
	cons := console.NewBufferConsole("break 2", "step", "continue")
	rec := &eventRecorder{}
	d := NewDebugger(eng, cons, WithCallback(rec.record))
	eng.SetHooks(d)

	eng.Execute()
	d.RunDone()

	assert.Equal(t, []string{
		"stopped/entry:1",
		"breakpoint/new:2",
		"continued",
		"stopped/breakpoint:2",
		"continued",
		"exited",
	}, rec.events)
}

// TestAfterRunShell 脚本跑完后run可以重启一轮，重启后不在第一条指令停
func TestAfterRunShell(t *testing.T) {
	script := walkScript("walk.tmpl")
	d, eng, cons := newTestDebugger(script, "continue", "run")

	eng.Execute()
	d.RunDone()
	again := d.AfterRun()

	assert.True(t, again)
	assert.True(t, d.RestartPending())

	d.ClearPending()
	d.ResetRun()
	eng.Execute()

	// 第二轮没有消耗任何输入
	assert.Equal(t, 2, stops(cons))
	assert.Equal(t, 12, len(eng.Output))
}
