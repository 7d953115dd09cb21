package tree_engine

import (
	"github.com/fansqz/template-debugger/engine"
)

// 构建指令树的辅助函数，测试和演示脚本都用它拼树。
// 真实系统里这棵树由脚本编译器产出。

// NewDocument 创建文档并挂上根节点
func NewDocument(url string) *engine.Document {
	doc := &engine.Document{URL: url}
	doc.Root = &engine.Node{Name: "root", Doc: doc, Line: 1}
	return doc
}

// Element 创建一个元素指令节点
func Element(doc *engine.Document, name string, line int,
	attrs map[string]string, children ...*engine.Node) *engine.Node {
	node := &engine.Node{
		Type:     engine.ElementNode,
		Name:     name,
		Prefix:   "t",
		Doc:      doc,
		Line:     line,
		Attrs:    attrs,
		Children: children,
	}
	for _, child := range children {
		child.Parent = node
	}
	return node
}

// Text 创建一个文本节点
func Text(doc *engine.Document, line int, text string) *engine.Node {
	return &engine.Node{
		Type: engine.TextNode,
		Doc:  doc,
		Line: line,
		Text: text,
	}
}

// AddTemplate 创建模板并登记到脚本，模板体节点同时挂到文档根下
func AddTemplate(script *engine.Script, name, match string,
	elem *engine.Node) *engine.Template {
	tmpl := &engine.Template{Name: name, Match: match, Elem: elem}
	script.Templates = append(script.Templates, tmpl)
	if script.Doc != nil && script.Doc.Root != nil {
		elem.Parent = script.Doc.Root
		script.Doc.Root.Children = append(script.Doc.Root.Children, elem)
	}
	return tmpl
}

// AddGlobal 登记一条全局变量初始化指令
func AddGlobal(script *engine.Script, inst *engine.Node) {
	script.Globals = append(script.Globals, inst)
	if script.Doc != nil && script.Doc.Root != nil {
		inst.Parent = script.Doc.Root
		script.Doc.Root.Children = append(script.Doc.Root.Children, inst)
	}
}

// NewScript 创建空脚本
func NewScript(doc *engine.Document, generation uint64) *engine.Script {
	return &engine.Script{Doc: doc, Generation: generation}
}
