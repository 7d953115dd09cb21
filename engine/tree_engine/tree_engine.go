package tree_engine

import (
	"github.com/fansqz/template-debugger/constants"
	"github.com/fansqz/template-debugger/engine"
	"github.com/fansqz/template-debugger/utils"
	"github.com/sirupsen/logrus"
)

// TreeEngine 在预先构建好的指令树上执行模板调用的参考引擎
// 它只做最简单的分发语义，用来驱动三个调试钩子：每条指令执行前回调
// Handler，进入和退出调用时回调AddFrame和DropFrame，并在每条指令之间
// 检查共享运行状态。真实的变换引擎按同样的契约接入调试器即可。
type TreeEngine struct {
	script *engine.Script
	hooks  engine.Hooks
	status *utils.StatusManager

	ctxt        *engine.TransformContext
	curTemplate *engine.Template
	curNode     *engine.Node

	stopped bool
	Output  []string // value-of和文本节点产生的输出
}

func NewTreeEngine(script *engine.Script) *TreeEngine {
	return &TreeEngine{
		script: script,
		status: utils.NewStatusManager(),
	}
}

// SetHooks 挂接调试钩子，为空表示不调试
func (e *TreeEngine) SetHooks(hooks engine.Hooks) {
	e.hooks = hooks
}

func (e *TreeEngine) GetRunStatus() constants.RunStatus {
	return e.status.Get()
}

func (e *TreeEngine) SetRunStatus(status constants.RunStatus) {
	e.status.Set(status)
}

// Stop 请求提前结束本轮执行
func (e *TreeEngine) Stop() {
	e.stopped = true
}

func (e *TreeEngine) Script() *engine.Script {
	return e.script
}

// SetScript 换上重新加载的脚本
func (e *TreeEngine) SetScript(script *engine.Script) {
	e.script = script
}

// Execute 执行一轮脚本：先跑全局变量初始化，再从根模板开始分发
func (e *TreeEngine) Execute() {
	e.stopped = false
	e.Output = nil
	e.curTemplate = nil
	e.curNode = nil
	e.ctxt = &engine.TransformContext{
		Doc: e.script.Doc,
	}
	e.ctxt.Evaluator = &evaluator{engine: e}

	// 全局变量初始化，没有所在模板，上下文节点也为空
	for _, g := range e.script.Globals {
		if e.halted() {
			break
		}
		tracked := e.addFrame(nil, g)
		e.execInst(g)
		if tracked {
			e.dropFrame()
		}
	}

	if root := e.rootTemplate(); root != nil && !e.halted() {
		e.curNode = e.script.Doc.Root
		e.invokeTemplate(root, root.Elem)
	}

	logrus.Debugf("execute: finished, status %s, %d output lines",
		e.status.Get(), len(e.Output))
}

// rootTemplate 匹配"/"的模板，没有就取第一个
func (e *TreeEngine) rootTemplate() *engine.Template {
	for _, tmpl := range e.script.Templates {
		if tmpl.Match == "/" {
			return tmpl
		}
	}
	if len(e.script.Templates) > 0 {
		return e.script.Templates[0]
	}
	return nil
}

// invokeTemplate 进入一个模板：压帧、执行模板体、弹帧
func (e *TreeEngine) invokeTemplate(tmpl *engine.Template, callInst *engine.Node) {
	tracked := e.addFrame(tmpl, callInst)

	prev := e.curTemplate
	e.curTemplate = tmpl
	e.execInst(tmpl.Elem)
	e.curTemplate = prev

	if tracked {
		e.dropFrame()
	}
}

// execInst 执行一条指令：先回调Handler，再按指令种类分发
func (e *TreeEngine) execInst(inst *engine.Node) {
	if inst == nil || e.halted() {
		return
	}

	if e.hooks != nil {
		e.hooks.Handler(inst, e.curNode, e.curTemplate, e.ctxt)
	}
	if e.halted() {
		return
	}

	if inst.Type == engine.TextNode {
		e.Output = append(e.Output, inst.Text)
		return
	}

	switch inst.Name {
	case constants.ElementTemplate:
		e.execChildren(inst)

	case constants.ElementVariable:
		e.ctxt.Vars = append(e.ctxt.Vars, &engine.Variable{
			Name:  inst.Attr("name"),
			Value: e.evalOrString(inst.Attr("select")),
		})

	case constants.ElementValueOf:
		if value := e.evalOrString(inst.Attr("select")); value != nil {
			e.Output = append(e.Output, valueString(value))
		}

	case constants.ElementCallTemplate:
		e.execCallTemplate(inst)

	case constants.ElementApplyTemplates:
		e.execApplyTemplates(inst)

	case constants.ElementIf:
		e.execIf(inst)

	case constants.ElementChoose:
		e.execChoose(inst)

	default:
		// 字面量元素，执行子指令
		e.execChildren(inst)
	}
}

func (e *TreeEngine) execChildren(inst *engine.Node) {
	for _, child := range inst.Children {
		if e.halted() {
			return
		}
		e.execInst(child)
	}
}

// execCallTemplate 具名模板调用
// with-param子指令各自压一个参数帧，参数帧在调用返回后按反序弹出
func (e *TreeEngine) execCallTemplate(inst *engine.Node) {
	name := inst.Attr("name")
	target := e.findTemplate(name)
	if target == nil {
		logrus.Warnf("call-template: no such template %q", name)
		return
	}

	var paramFrames int
	for _, child := range inst.Children {
		if child.Name != constants.ElementWithParam {
			continue
		}
		if e.halted() {
			break
		}
		if e.addFrame(target, child) {
			paramFrames++
		}
		e.ctxt.Vars = append(e.ctxt.Vars, &engine.Variable{
			Name:  child.Attr("name"),
			Value: e.evalOrString(child.Attr("select")),
		})
	}

	if !e.halted() {
		e.invokeTemplate(target, inst)
	}

	for ; paramFrames > 0; paramFrames-- {
		e.dropFrame()
	}
}

// execApplyTemplates 按模式分发
// 引擎对一次逻辑调用会报两次帧进入：外层分发时一次，命中的模板开始
// 应用时再一次，两次带的是同一条调用指令，调试器负责去掉内层那次
func (e *TreeEngine) execApplyTemplates(inst *engine.Node) {
	target := e.findMatch(inst.Attr("select"))
	if target == nil {
		return
	}

	outerTracked := e.addFrame(target, inst)

	// invokeTemplate里会对同一条指令再报一次帧进入
	e.invokeTemplate(target, inst)

	if outerTracked {
		e.dropFrame()
	}
}

func (e *TreeEngine) execIf(inst *engine.Node) {
	tracked := e.addFrame(e.curTemplate, inst)
	if truthy(e.evalOrString(inst.Attr("test"))) {
		e.execChildren(inst)
	}
	if tracked {
		e.dropFrame()
	}
}

func (e *TreeEngine) execChoose(inst *engine.Node) {
	tracked := e.addFrame(e.curTemplate, inst)
	for _, child := range inst.Children {
		if e.halted() {
			break
		}
		switch child.Name {
		case constants.ElementWhen:
			if truthy(e.evalOrString(child.Attr("test"))) {
				whenTracked := e.addFrame(e.curTemplate, child)
				e.execChildren(child)
				if whenTracked {
					e.dropFrame()
				}
				if tracked {
					e.dropFrame()
				}
				return
			}
		case constants.ElementOtherwise:
			otherTracked := e.addFrame(e.curTemplate, child)
			e.execChildren(child)
			if otherTracked {
				e.dropFrame()
			}
			if tracked {
				e.dropFrame()
			}
			return
		}
	}
	if tracked {
		e.dropFrame()
	}
}

func (e *TreeEngine) findTemplate(name string) *engine.Template {
	for _, tmpl := range e.script.Templates {
		if tmpl.Name == name {
			return tmpl
		}
	}
	for _, imp := range e.script.Imports {
		for _, tmpl := range imp.Templates {
			if tmpl.Name == name {
				return tmpl
			}
		}
	}
	return nil
}

func (e *TreeEngine) findMatch(pattern string) *engine.Template {
	for _, tmpl := range e.script.Templates {
		if tmpl.Match != "" && tmpl.Match == pattern {
			return tmpl
		}
	}
	return nil
}

func (e *TreeEngine) addFrame(tmpl *engine.Template, inst *engine.Node) bool {
	if e.hooks == nil {
		return false
	}
	return e.hooks.AddFrame(tmpl, inst)
}

func (e *TreeEngine) dropFrame() {
	if e.hooks != nil {
		e.hooks.DropFrame()
	}
}

// halted 调试器要求退出或外部请求停止
func (e *TreeEngine) halted() bool {
	return e.stopped || e.status.Is(constants.StatusQuit)
}

func (e *TreeEngine) evalOrString(expr string) *engine.Value {
	if expr == "" {
		return &engine.Value{Type: engine.StringValue}
	}
	value, err := e.ctxt.Evaluator.Evaluate(e.ctxt, e.curNode, expr)
	if err != nil {
		logrus.Debugf("eval %q: %v", expr, err)
		return &engine.Value{Type: engine.StringValue, Str: expr}
	}
	return value
}
