package debugger

import (
	"testing"

	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/engine/tree_engine"
	"github.com/fansqz/template-debugger/profiler"
	"github.com/stretchr/testify/assert"
)

// TestFindCommand 最短无歧义缩写按表序取第一个匹配
func TestFindCommand(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"b", "break"},
		{"bre", "break"},
		{"bt", "bt"},
		{"c", "continue"}, // callflow要求至少两个字符
		{"ca", "callflow"},
		{"d", "delete"},
		{"f", "finish"},
		{"h", "help"},
		{"?", "?"},
		{"i", "info"},
		{"l", "list"},
		{"n", "next"},
		{"o", "over"},
		{"p", "print"}, // profile要求至少两个字符
		{"pr", "print"},
		{"pro", "profile"},
		{"rel", "reload"},
		{"run", "run"},
		{"s", "step"},
		{"w", "where"},
		{"q", "quit"},
	}
	for _, c := range cases {
		cmd := findCommand(c.input)
		assert.NotNil(t, cmd, c.input)
		assert.Equal(t, c.want, cmd.name, c.input)
	}

	// run和reload都要求至少三个字符
	assert.Nil(t, findCommand("r"))
	assert.Nil(t, findCommand("re"))
	assert.Nil(t, findCommand("breakx"))
	assert.Nil(t, findCommand("zz"))
}

func TestUnknownCommand(t *testing.T) {
	d, _, cons := stoppedDebugger()

	d.runCommand("frobnicate")

	assert.True(t, cons.Contains("Unknown command 'frobnicate'"))
}

func TestHelp(t *testing.T) {
	d, _, cons := stoppedDebugger()

	d.runCommand("help")

	assert.True(t, cons.Contains("Supported commands:"))
	assert.True(t, cons.Contains(
		"  break [loc]     Add a breakpoint at [file:]line or template"))
	// 隐藏命令不出现在帮助里
	for _, out := range cons.Outputs {
		assert.NotContains(t, out, "bt ")
	}
}

// TestWhere 断点停住后where输出模板调用回溯
func TestWhere(t *testing.T) {
	script := walkScript("walk.tmpl")
	_, eng, cons := newTestDebugger(script,
		"break 7", "continue", "where", "continue")

	eng.Execute()

	assert.True(t, cons.Contains("#0 template main match / from walk.tmpl:1"))
	assert.True(t, cons.Contains("#1 template inner() from walk.tmpl:3"))
}

// TestPrint 停住时print用引擎的求值器求表达式
func TestPrint(t *testing.T) {
	doc := tree_engine.NewDocument("print.tmpl")
	script := tree_engine.NewScript(doc, 1)
	main := tree_engine.Element(doc, "template", 1, nil,
		tree_engine.Element(doc, "variable", 2,
			map[string]string{"name": "greeting", "select": "'hello'"}),
		tree_engine.Element(doc, "value-of", 3,
			map[string]string{"select": "$greeting"}),
	)
	tree_engine.AddTemplate(script, "main", "/", main)

	_, eng, cons := newTestDebugger(script,
		"step", "step",
		"print $greeting", "print 42", "print true()", "print $missing",
		"continue")

	eng.Execute()

	assert.True(t, cons.Contains("[string] hello"))
	assert.True(t, cons.Contains("[number] 42"))
	assert.True(t, cons.Contains("[boolean] true"))
	assert.Equal(t, []string{"hello"}, eng.Output)

	found := false
	for _, out := range cons.Outputs {
		if len(out) > 19 && out[:19] == "invalid expression:" {
			found = true
		}
	}
	assert.True(t, found)
}

// TestModeEmacs emacs模式下显示当前行时追加位置转义序列
func TestModeEmacs(t *testing.T) {
	dir := t.TempDir()
	source := "template main {\n    value-of 'a';\n    call inner;\n" +
		"    value-of 'b';\n}\ntemplate inner {\n    value-of 'x';\n}\n"
	url := writeSource(t, dir, "walk.tmpl", source)

	script := walkScript(url)
	_, eng, cons := newTestDebugger(script, "mode emacs", "step", "continue")

	eng.Execute()

	assert.True(t, cons.Contains("\x1a\x1awalk.tmpl:2:0"))
}

func TestCallFlowToggle(t *testing.T) {
	d, _, cons := stoppedDebugger()

	d.runCommand("callflow")
	assert.True(t, d.callFlow)
	assert.True(t, cons.Contains("Enabling callflow"))

	d.runCommand("callflow")
	assert.False(t, d.callFlow)
	assert.True(t, cons.Contains("Disabling callflow"))

	d.runCommand("callflow bogus")
	assert.True(t, cons.Contains("invalid setting: bogus"))
}

func TestProfileUnavailable(t *testing.T) {
	d, _, cons := stoppedDebugger()

	d.runCommand("profile")

	assert.True(t, cons.Contains("profiler not available"))
}

func TestProfileToggle(t *testing.T) {
	d, _, cons := stoppedDebugger()
	d.profiler = profiler.New(cons)

	d.runCommand("profile")
	assert.True(t, d.profiling)
	assert.True(t, cons.Contains("Enabling profiler"))

	d.runCommand("profile off")
	assert.False(t, d.profiling)
	assert.True(t, cons.Contains("Disabling profiler"))

	d.runCommand("profile report")
	assert.True(t, cons.Contains("No profile data"))
}

// TestQuitConfirmDeclined 运行中的quit需要确认，拒绝后状态不变
func TestQuitConfirmDeclined(t *testing.T) {
	d, _, cons := stoppedDebugger()
	d.engine.SetRunStatus(constants.StatusInit)

	cons.Feed("no")
	d.runCommand("quit")
	assert.Equal(t, constants.StatusInit, d.Status())

	cons.Feed("yes")
	d.runCommand("quit")
	assert.Equal(t, constants.StatusQuit, d.Status())
}

// TestRunSetsRestartPending run命令只设置重启标志，由外层驱动处理
func TestRunSetsRestartPending(t *testing.T) {
	d, _, _ := stoppedDebugger()
	d.engine.SetRunStatus(constants.StatusDone)

	d.runCommand("run")

	assert.True(t, d.RestartPending())
	assert.False(t, d.ReloadPending())
	assert.Equal(t, constants.StatusQuit, d.Status())

	d.ClearPending()
	assert.False(t, d.RestartPending())
}

// TestReloadSetsReloadPending reload同理
func TestReloadSetsReloadPending(t *testing.T) {
	d, _, _ := stoppedDebugger()
	d.engine.SetRunStatus(constants.StatusDone)

	d.runCommand("reload")

	assert.True(t, d.ReloadPending())
	assert.Equal(t, constants.StatusQuit, d.Status())
}

// TestListShowsSource list从目标位置开始输出源码
func TestListShowsSource(t *testing.T) {
	dir := t.TempDir()
	source := "template main {\n    value-of 'a';\n    call inner;\n" +
		"    value-of 'b';\n}\ntemplate inner {\n    value-of 'x';\n}\n"
	url := writeSource(t, dir, "walk.tmpl", source)

	script := walkScript(url)
	d, _, cons := newTestDebugger(script)
	d.inst = script.Templates[0].Elem

	d.runCommand("list 6")

	assert.True(t, cons.Contains("walk.tmpl:6: template inner {"))
	assert.True(t, cons.Contains("walk.tmpl:7:     value-of 'x';"))
}
