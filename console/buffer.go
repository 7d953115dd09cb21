package console

import (
	"fmt"
	"io"
)

// BufferConsole 预置输入、记录输出的控制台，测试中模拟一次交互会话
type BufferConsole struct {
	inputs  []string
	Outputs []string
	Prompts []string
}

func NewBufferConsole(inputs ...string) *BufferConsole {
	return &BufferConsole{inputs: inputs}
}

// Feed 追加待读取的输入行
func (c *BufferConsole) Feed(lines ...string) {
	c.inputs = append(c.inputs, lines...)
}

func (c *BufferConsole) ReadLine(prompt string) (string, error) {
	c.Prompts = append(c.Prompts, prompt)
	if len(c.inputs) == 0 {
		return "", io.EOF
	}
	line := c.inputs[0]
	c.inputs = c.inputs[1:]
	return line, nil
}

func (c *BufferConsole) WriteLine(format string, a ...interface{}) {
	c.Outputs = append(c.Outputs, fmt.Sprintf(format, a...))
}

// Contains 判断是否输出过某一行
func (c *BufferConsole) Contains(line string) bool {
	for _, out := range c.Outputs {
		if out == line {
			return true
		}
	}
	return false
}
