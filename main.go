package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fansqz/template-debugger/console"
	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/debugger"
	"github.com/fansqz/template-debugger/engine"
	"github.com/fansqz/template-debugger/engine/tree_engine"
	"github.com/fansqz/template-debugger/profiler"
	"github.com/sirupsen/logrus"
)

// 定义版本号
const Version = "1.0.0"

func main() {
	SetupLogger()
	defer CloseLogger()

	showVersion := flag.Bool("version", false, "Show the version number")
	port := flag.String("port", "", "TCP port for the DAP event mirror")
	mode := flag.String("mode", "cli", "Display mode: cli or emacs")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Version: %s\n", Version)
		return
	}

	cons, err := console.NewTermConsole()
	if err != nil {
		fmt.Printf("console setup failed: %s\n", err)
		return
	}
	defer cons.Close()

	// 可选的事件镜像，把会话以DAP事件广播给外部编辑器
	var server *EventServer
	var callback debugger.NotificationCallback
	if *port != "" {
		server = NewEventServer()
		if err = server.Start(*port); err != nil {
			fmt.Printf("event mirror failed: %s\n", err)
			return
		}
		defer server.Close()
		callback = server.Broadcast
	}

	dir, err := os.MkdirTemp("", "tdb-demo")
	if err != nil {
		fmt.Printf("demo setup failed: %s\n", err)
		return
	}
	defer os.RemoveAll(dir)

	generation := uint64(1)
	script, err := buildDemoScript(dir, generation)
	if err != nil {
		fmt.Printf("demo setup failed: %s\n", err)
		return
	}

	eng := tree_engine.NewTreeEngine(script)
	d := debugger.NewDebugger(eng, cons,
		debugger.WithProfiler(profiler.New(cons)),
		debugger.WithCallback(callback))
	eng.SetHooks(d)

	if constants.DisplayMode(*mode) == constants.EmacsMode {
		d.SetDisplayMode(constants.EmacsMode)
	}

	if err = d.Register(Version); err != nil {
		fmt.Printf("debugger setup failed: %s\n", err)
		return
	}

	// 外层驱动循环：一轮执行结束后根据restart/reload标志决定是重跑、
	// 重新加载还是退出
	restart := func() bool {
		if !d.RestartPending() && !d.ReloadPending() {
			return false
		}
		reload := d.ReloadPending()
		d.ClearPending()
		if reload {
			generation++
			script, err = buildDemoScript(dir, generation)
			if err != nil {
				logrus.Errorf("reload failed: %v", err)
				return false
			}
			eng.SetScript(script)
			if err = d.Reload(script); err != nil {
				logrus.Errorf("reload failed: %v", err)
				return false
			}
		} else {
			d.ResetRun()
		}
		return true
	}

	for {
		eng.Execute()

		if restart() {
			continue
		}
		if d.Status() == constants.StatusQuit {
			break
		}

		for _, line := range eng.Output {
			cons.WriteLine("%s", line)
		}
		d.RunDone()

		if !d.AfterRun() {
			break
		}
		if !restart() {
			break
		}
	}
}

// buildDemoScript 把演示脚本源码写到磁盘并构建对应的指令树
// 真实系统里这一步由脚本编译器完成
func buildDemoScript(dir string, generation uint64) (*engine.Script, error) {
	source := `template main {
    variable greeting = 'hello';
    value-of $greeting;
    call report;
}
template report {
    value-of 'report body';
}
`
	url := filepath.Join(dir, "demo.tmpl")
	if err := os.WriteFile(url, []byte(source), 0644); err != nil {
		return nil, err
	}

	doc := tree_engine.NewDocument(url)
	script := tree_engine.NewScript(doc, generation)

	main := tree_engine.Element(doc, "template", 1, nil,
		tree_engine.Element(doc, "variable", 2,
			map[string]string{"name": "greeting", "select": "'hello'"}),
		tree_engine.Element(doc, "value-of", 3,
			map[string]string{"select": "$greeting"}),
		tree_engine.Element(doc, "call-template", 4,
			map[string]string{"name": "report"}),
	)
	tree_engine.AddTemplate(script, "main", "/", main)

	report := tree_engine.Element(doc, "template", 6, nil,
		tree_engine.Element(doc, "value-of", 7,
			map[string]string{"select": "'report body'"}),
	)
	tree_engine.AddTemplate(script, "report", "", report)

	return script, nil
}
