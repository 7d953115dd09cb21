package debugger

import (
	"strings"
)

const prompt = "(tdb) "

// commandFunc 命令处理函数，line是完整输入行，argv是空白切分后的词
type commandFunc func(d *Debugger, line string, argv []string)

// command 命令表中的一项，进程内只读
type command struct {
	name string // 命令全名
	min  int    // 可识别的最短缩写长度
	fn   commandFunc
	help string // 为空表示隐藏命令
}

// 命令表按名字顺序排列，缩写按表序取第一个满足最短长度的前缀匹配
// help要回头遍历整个表，所以表在init里装配
var cmdTable []command

func init() {
	cmdTable = []command{
		{"break", 1, cmdBreak,
			"break [loc]     Add a breakpoint at [file:]line or template"},
		{"bt", 2, cmdWhere, ""},
		{"callflow", 2, cmdCallFlow,
			"callflow [val]  Enable call flow tracing"},
		{"continue", 1, cmdContinue,
			"continue [loc]  Continue running the script"},
		{"delete", 1, cmdDelete,
			"delete [num]    Delete all (or one) breakpoints"},
		{"finish", 1, cmdFinish,
			"finish          Finish the current template"},
		{"help", 1, cmdHelp,
			"help            Print this help message"},
		{"?", 1, cmdHelp, ""},
		{"info", 1, cmdInfo,
			"info            Display information about breakpoints"},
		{"list", 1, cmdList,
			"list [loc]      List contents of the current script"},
		{"mode", 1, cmdMode, ""},
		{"next", 1, cmdNext,
			"next            Execute the over instruction, stepping over calls"},
		{"over", 1, cmdOver,
			"over            Execute the current instruction hierarchy"},
		{"print", 1, cmdPrint,
			"print <expr>    Print the value of an expression"},
		{"profile", 2, cmdProfile,
			"profile [val]   Turn profiler on or off"},
		{"reload", 3, cmdReload,
			"reload          Reload the script contents"},
		{"run", 3, cmdRun,
			"run             Restart the script"},
		{"step", 1, cmdStep,
			"step            Execute the next instruction, stepping into calls"},
		{"where", 1, cmdWhere,
			"where           Print the backtrace of template calls"},
		{"quit", 1, cmdQuit,
			"quit            Quit debugger"},
	}
}

// findCommand 按最短无歧义缩写查命令，找不到返回nil
func findCommand(name string) *command {
	for i := range cmdTable {
		cmd := &cmdTable[i]
		if len(name) >= cmd.min && strings.HasPrefix(cmd.name, name) {
			return cmd
		}
	}
	return nil
}

// shell 显示提示符，读取并执行一条命令
// 这里是整个调试器唯一的挂起点；输入耗尽时返回错误
func (d *Debugger) shell() error {
	if d.displayPending {
		d.showCurrentLine()
		d.displayPending = false
	}

	input, err := d.console.ReadLine(prompt)
	if err != nil {
		return err
	}

	d.count++

	line := strings.TrimSpace(input)
	if line == "" {
		// 空输入重复上一条命令
		line = d.prevInput
	} else {
		d.prevInput = line
	}

	d.runCommand(line)
	return nil
}

// runCommand 切词、查表、分发
func (d *Debugger) runCommand(line string) {
	argv := strings.Fields(line)
	if len(argv) == 0 {
		return
	}

	cmd := findCommand(argv[0])
	if cmd == nil {
		d.output("Unknown command '%s'", argv[0])
		return
	}

	// 命令处理函数内再读输入（如删除确认）时不允许递归进指令钩子
	d.inShell = true
	defer func() { d.inShell = false }()

	cmd.fn(d, line, argv)
}

// arg 第i个参数，缺省为空串
func arg(argv []string, i int) string {
	if i < len(argv) {
		return argv[i]
	}
	return ""
}
