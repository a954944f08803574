package service

import "sync"

// keyedMutex - 키(체크 id, 조직 id)별로 독립적인 락을 제공한다.
// 전역 락 하나로 묶으면 조직 간 병렬성이 사라지므로 키 단위로 분리한다.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}
