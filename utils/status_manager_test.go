package utils

import (
	"sync"
	"testing"

	"github.com/fansqz/template-debugger/constants"
	"github.com/stretchr/testify/assert"
)

func TestStatusManager(t *testing.T) {
	m := NewStatusManager()
	assert.Equal(t, constants.StatusUnstarted, m.Get())

	m.Set(constants.StatusInit)
	assert.Equal(t, constants.StatusInit, m.Get())
	assert.True(t, m.Is(constants.StatusInit, constants.StatusStep))
	assert.False(t, m.Is(constants.StatusQuit))
}

// TestStatusManagerConcurrent 事件镜像可能从别的协程读状态
func TestStatusManagerConcurrent(t *testing.T) {
	m := NewStatusManager()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Set(constants.StatusCont)
		}()
		go func() {
			defer wg.Done()
			_ = m.Get()
		}()
	}
	wg.Wait()

	assert.Equal(t, constants.StatusCont, m.Get())
}
