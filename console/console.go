package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	e "github.com/fansqz/template-debugger/error"
	"golang.org/x/term"
)

// Console 行式控制台，调试器唯一的阻塞点就是ReadLine
type Console interface {
	// ReadLine 显示提示符并读取一行输入，输入耗尽时返回io.EOF
	ReadLine(prompt string) (string, error)
	// WriteLine 输出一行
	WriteLine(format string, a ...interface{})
}

// TermConsole 标准输入输出上的控制台
// 标准输入是终端时使用term.Terminal，自带行编辑和历史记录；
// 否则退化为普通的按行读取
type TermConsole struct {
	terminal *term.Terminal
	oldState *term.State
	fd       int
	scanner  *bufio.Scanner
	out      io.Writer
	closed   bool
}

func NewTermConsole() (*TermConsole, error) {
	c := &TermConsole{
		fd:  int(os.Stdin.Fd()),
		out: os.Stdout,
	}
	if term.IsTerminal(c.fd) {
		oldState, err := term.MakeRaw(c.fd)
		if err != nil {
			return nil, err
		}
		c.oldState = oldState
		screen := struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}
		c.terminal = term.NewTerminal(screen, "")
	} else {
		c.scanner = bufio.NewScanner(os.Stdin)
	}
	return c, nil
}

func (c *TermConsole) ReadLine(prompt string) (string, error) {
	if c.closed {
		return "", e.ErrSessionClosed
	}
	if c.terminal != nil {
		c.terminal.SetPrompt(prompt)
		return c.terminal.ReadLine()
	}
	fmt.Fprint(c.out, prompt)
	if c.scanner.Scan() {
		return c.scanner.Text(), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (c *TermConsole) WriteLine(format string, a ...interface{}) {
	if c.terminal != nil {
		// 原始模式下由terminal负责换行转换
		fmt.Fprintf(c.terminal, format+"\n", a...)
		return
	}
	fmt.Fprintf(c.out, format+"\n", a...)
}

// Close 还原终端状态，之后的读取返回会话已关闭
func (c *TermConsole) Close() {
	c.closed = true
	if c.oldState != nil {
		_ = term.Restore(c.fd, c.oldState)
		c.oldState = nil
	}
}
