package engine

// Template 脚本中一个具名或按模式匹配的模板
type Template struct {
	Name  string // 模板名，可为空
	Match string // 匹配模式，可为空
	Elem  *Node  // 模板体的起始指令
}

// Script 当前加载的顶层脚本
// 脚本和其中的指令树由引擎独占所有，reload会使旧树上的全部引用失效，
// Generation在每次加载时递增，调试器用它识别断点引用是否已经过期
type Script struct {
	Doc        *Document
	Templates  []*Template
	Globals    []*Node // 全局变量初始化指令
	Imports    []*Script
	Generation uint64
}

// FindTemplate 按模板的匹配模式或名称查找模板体的起始指令
func (s *Script) FindTemplate(name string) *Node {
	if s == nil {
		return nil
	}
	for _, tmpl := range s.Templates {
		if (tmpl.Match != "" && tmpl.Match == name) ||
			(tmpl.Name != "" && tmpl.Name == name) {
			return tmpl.Elem
		}
	}
	for _, imp := range s.Imports {
		if node := imp.FindTemplate(name); node != nil {
			return node
		}
	}
	return nil
}
