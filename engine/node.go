package engine

// NodeType 指令节点类型
type NodeType int

const (
	// ElementNode 元素节点，可执行指令
	ElementNode NodeType = iota
	// TextNode 文本节点，调试器永远不会在其上停住
	TextNode
)

// Node 引擎指令树中的一个节点
// 节点由引擎独占所有，调试器只持有非拥有引用，绝不修改和释放
type Node struct {
	Type     NodeType
	Name     string // 元素名，例如 call-template
	Prefix   string // 命名空间前缀
	Doc      *Document
	Line     int
	Parent   *Node
	Children []*Node
	Attrs    map[string]string // 元素属性，如 name、select
	Text     string            // 文本节点的内容
}

// Attr 读取属性，缺省为空串
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// QName 返回带前缀的节点名称，用于callflow输出
func (n *Node) QName() string {
	if n == nil {
		return ""
	}
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Name
	}
	return n.Name
}

// URL 节点所在文档的路径，节点或文档缺失时返回空串
func (n *Node) URL() string {
	if n == nil || n.Doc == nil {
		return ""
	}
	return n.Doc.URL
}

// Document 一个已加载的脚本文档
type Document struct {
	URL  string
	Root *Node
}
