package engine

// Variable 变换上下文变量表中的一项
type Variable struct {
	Name  string
	Value *Value
}

// TransformContext 一次变换的上下文，由引擎独占所有并随执行不断变化
// 变量表按声明顺序追加，调试器通过某一时刻的表长推断栈帧的局部变量区间
type TransformContext struct {
	Doc       *Document
	Vars      []*Variable
	Evaluator Evaluator
}

// VarsLen 当前变量表长度
func (c *TransformContext) VarsLen() int {
	if c == nil {
		return 0
	}
	return len(c.Vars)
}
