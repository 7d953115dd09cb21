package debugger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/engine"
)

// showCurrentLine 停住时显示当前源码行
func (d *Debugger) showCurrentLine() {
	if d.inst == nil || d.inst.Doc == nil {
		return
	}
	lineno := lineNo(d.inst)
	d.outputScriptLines(d.inst.URL(), lineno, lineno+1)
}

// outputScriptLines 输出[start, stop)范围内的源码行
// 文件打不开就什么都不显示，不报错
func (d *Debugger) outputScriptLines(filename string, start, stop int) {
	if filename == "" || start == 0 || stop == 0 {
		return
	}

	fp, err := os.Open(filename)
	if err != nil {
		return
	}
	defer fp.Close()

	base := baseName(filename)
	count := 0
	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		count++
		if count < start {
			continue
		}
		if count >= stop {
			break
		}
		d.output("%s:%d: %s", base, count, scanner.Text())
	}

	if d.mode == constants.EmacsMode {
		// emacs下路径要相对于主脚本所在目录
		rel := filename
		if d.script != nil && d.script.Doc != nil {
			if r, err := filepath.Rel(filepath.Dir(d.script.Doc.URL),
				filename); err == nil {
				rel = r
			}
		}
		d.output("%c%c%s:%d:0", 26, 26, rel, start)
	}
}

// templateInfo 模板的显示名称
func templateInfo(template *engine.Template) string {
	if template == nil {
		return "[global]"
	}

	var sb strings.Builder
	if template.Name != "" {
		fmt.Fprintf(&sb, "template %s ", template.Name)
	}
	if template.Match != "" {
		fmt.Fprintf(&sb, "match %s ", template.Match)
	}
	return strings.TrimSpace(sb.String())
}

// callFlowLine 调用流跟踪输出
func (d *Debugger) callFlowLine(tag string, template *engine.Template,
	inst *engine.Node) {
	d.output("callflow: %d: %s <%s> in %s at %s:%d",
		d.stackDepth, tag, inst.QName(), templateInfo(template),
		inst.URL(), lineNo(inst))
}

// outputValue 打印表达式求值结果
func (d *Debugger) outputValue(value *engine.Value) {
	if value == nil {
		return
	}

	switch value.Type {
	case engine.BooleanValue:
		d.output("[boolean] %t", value.Bool)

	case engine.NumberValue:
		d.output("[number] %s", strconv.FormatFloat(value.Number, 'g', -1, 64))

	case engine.StringValue:
		d.output("[string] %s", value.Str)

	case engine.NodesetValue:
		d.output("[node-set] (%d)", len(value.Nodeset))
		for _, node := range value.Nodeset {
			d.output("%s", renderNode(node))
		}
	}
}

func formatValue(value *engine.Value) string {
	if value == nil {
		return "(null)"
	}
	switch value.Type {
	case engine.BooleanValue:
		return strconv.FormatBool(value.Bool)
	case engine.NumberValue:
		return strconv.FormatFloat(value.Number, 'g', -1, 64)
	case engine.StringValue:
		return value.Str
	case engine.NodesetValue:
		return fmt.Sprintf("node-set(%d)", len(value.Nodeset))
	}
	return "(unknown)"
}

// renderNode 节点的简单文本形式
func renderNode(node *engine.Node) string {
	if node == nil {
		return ""
	}
	if node.Type == engine.TextNode {
		return node.Text
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<%s>", node.QName())
	for _, child := range node.Children {
		sb.WriteString(renderNode(child))
	}
	fmt.Fprintf(&sb, "</%s>", node.QName())
	return sb.String()
}
