// Package worker 提供有界的后台任务池
// 用于持久化镜像等尽力而为的异步任务，不阻塞调用方
package worker

import (
	"sync"

	"go.uber.org/zap"
)

// Pool 固定数量 worker 消费一个带缓冲的任务通道
type Pool struct {
	taskChan  chan func()
	workerNum int
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewPool 创建并启动 worker pool
func NewPool(workerNum, bufferSize int) *Pool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	p := &Pool{
		taskChan:  make(chan func(), bufferSize),
		workerNum: workerNum,
	}
	p.wg.Add(workerNum)
	for i := 0; i < workerNum; i++ {
		go p.startWorker()
	}
	zap.L().Info("worker pool started", zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return p
}

// startWorker 单个 worker 消费循环，任务 panic 时记录日志并继续
func (p *Pool) startWorker() {
	defer p.wg.Done()
	for task := range p.taskChan {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("worker task panic", zap.Any("recover", rec))
		}
	}()
	if task != nil {
		task()
	}
}

// Submit 提交任务；通道已满时丢弃并返回 false
// 池关闭后提交的任务同样被丢弃
func (p *Pool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.taskChan <- task:
		return true
	default:
		zap.L().Warn("worker pool queue full, task dropped")
		return false
	}
}

// Close 停止接收任务并等待已排队任务执行完毕
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.taskChan)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
