package tree_engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fansqz/template-debugger/engine"
)

// evaluator 参考引擎的表达式求值器
// 只认四种形式：$name变量引用、数字、引号字符串、true()/false()。
// 求值不会改动上下文，天然满足"返回前必须还原上下文"的约定
type evaluator struct {
	engine *TreeEngine
}

func (ev *evaluator) Evaluate(ctxt *engine.TransformContext,
	node *engine.Node, expr string) (*engine.Value, error) {

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	if strings.HasPrefix(expr, "$") {
		name := expr[1:]
		// 后声明的变量遮蔽先声明的，从表尾往回找
		for i := len(ctxt.Vars) - 1; i >= 0; i-- {
			if ctxt.Vars[i].Name == name {
				return ctxt.Vars[i].Value, nil
			}
		}
		return nil, fmt.Errorf("undefined variable: $%s", name)
	}

	switch expr {
	case "true()":
		return &engine.Value{Type: engine.BooleanValue, Bool: true}, nil
	case "false()":
		return &engine.Value{Type: engine.BooleanValue, Bool: false}, nil
	}

	if number, err := strconv.ParseFloat(expr, 64); err == nil {
		return &engine.Value{Type: engine.NumberValue, Number: number}, nil
	}

	if len(expr) >= 2 {
		if (expr[0] == '\'' && expr[len(expr)-1] == '\'') ||
			(expr[0] == '"' && expr[len(expr)-1] == '"') {
			return &engine.Value{
				Type: engine.StringValue,
				Str:  expr[1 : len(expr)-1],
			}, nil
		}
	}

	return nil, fmt.Errorf("cannot evaluate: %s", expr)
}

func valueString(value *engine.Value) string {
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
	return ""
}

func truthy(value *engine.Value) bool {
	if value == nil {
		return false
	}
	switch value.Type {
	case engine.BooleanValue:
		return value.Bool
	case engine.NumberValue:
		return value.Number != 0
	case engine.StringValue:
		return value.Str != ""
	case engine.NodesetValue:
		return len(value.Nodeset) > 0
	}
	return false
}
