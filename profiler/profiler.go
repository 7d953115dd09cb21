package profiler

import (
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/fansqz/template-debugger/console"
	"github.com/fansqz/template-debugger/engine"
)

// entry 一行源码的累计耗时
type entry struct {
	file  string
	count int
	total time.Duration
}

// Profiler 按源码行聚合指令执行耗时
// 一条指令的样本从Enter开始，到下一次Enter或Exit结束
type Profiler struct {
	console console.Console
	clock   func() time.Time

	// 行号 -> *entry，treemap保证报告按行号输出
	entries *treemap.Map

	cur      *engine.Node
	curStart time.Time
}

func New(cons console.Console) *Profiler {
	return &Profiler{
		console: cons,
		clock:   time.Now,
		entries: treemap.NewWith(utils.IntComparator),
	}
}

// WithClock 测试时注入时钟
func (p *Profiler) WithClock(clock func() time.Time) *Profiler {
	p.clock = clock
	return p
}

// Enter 一条指令即将执行，顺带结束上一条指令的样本
func (p *Profiler) Enter(inst *engine.Node) {
	now := p.clock()
	p.closeSample(now)
	p.cur = inst
	p.curStart = now
}

// Exit 结束当前样本
func (p *Profiler) Exit() {
	p.closeSample(p.clock())
	p.cur = nil
}

func (p *Profiler) closeSample(now time.Time) {
	if p.cur == nil {
		return
	}

	line := p.cur.Line
	var e *entry
	if v, found := p.entries.Get(line); found {
		e = v.(*entry)
	} else {
		e = &entry{file: p.cur.URL()}
		p.entries.Put(line, e)
	}
	e.count++
	e.total += now.Sub(p.curStart)
}

// Clear 清空已有统计
func (p *Profiler) Clear() {
	p.entries.Clear()
	p.cur = nil
}

// Report 输出统计报告
// 完整模式把同一文件里样本区间内没有命中的行也列出来，brief只列有样本的行
func (p *Profiler) Report(brief bool) {
	if p.entries.Empty() {
		p.console.WriteLine("No profile data")
		return
	}

	p.console.WriteLine("%8s %8s %12s %12s  %s",
		"Line", "Hits", "Total(us)", "Avg(us)", "File")

	prevLine := 0
	prevFile := ""
	it := p.entries.Iterator()
	for it.Next() {
		line := it.Key().(int)
		e := it.Value().(*entry)

		if !brief && prevFile == e.file {
			for missing := prevLine + 1; missing < line; missing++ {
				p.console.WriteLine("%8d %8d %12d %12d  %s",
					missing, 0, 0, 0, e.file)
			}
		}

		totalUs := e.total.Microseconds()
		p.console.WriteLine("%8d %8d %12d %12d  %s",
			line, e.count, totalUs, totalUs/int64(e.count), e.file)
		prevLine, prevFile = line, e.file
	}
}
