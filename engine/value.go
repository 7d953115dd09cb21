package engine

// ValueType 表达式求值结果的类型
type ValueType int

const (
	BooleanValue ValueType = iota
	NumberValue
	StringValue
	NodesetValue
)

// Value 表达式求值结果
type Value struct {
	Type    ValueType
	Bool    bool
	Number  float64
	Str     string
	Nodeset []*Node
}

// Evaluator 表达式求值器
// 求值过程中如果修改了上下文（文档、节点、命名空间、位置信息），
// 必须在返回前全部还原
type Evaluator interface {
	Evaluate(ctxt *TransformContext, node *Node, expr string) (*Value, error)
}
