package utils

import (
	"sync"

	"github.com/fansqz/template-debugger/constants"
)

// StatusManager 记录引擎运行状态的
// 调试核心本身是单线程的，但事件镜像可能从别的协程读状态
type StatusManager struct {
	lock   sync.RWMutex
	status constants.RunStatus
}

func NewStatusManager() *StatusManager {
	return &StatusManager{
		status: constants.StatusUnstarted,
	}
}

func (s *StatusManager) Set(status constants.RunStatus) {
	defer s.lock.Unlock()
	s.lock.Lock()
	s.status = status
}

func (s *StatusManager) Get() constants.RunStatus {
	defer s.lock.RUnlock()
	s.lock.RLock()
	return s.status
}

func (s *StatusManager) Is(statusList ...constants.RunStatus) bool {
	defer s.lock.RUnlock()
	s.lock.RLock()
	for _, status := range statusList {
		if s.status == status {
			return true
		}
	}
	return false
}
