// Package worker 有界并发工作池。容器间互相独立，可以并发处理；
// 并发度受配置约束，以尊重外部生成服务的速率限制。
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task 一个工作单元及其处理结果。
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc 单个工作单元的处理函数。
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool 泛型工作池。
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool 创建工作池，workers 小于1时按1处理。
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{workers: workers, process: fn}
}

// Execute 并发处理所有输入，结果与输入同序返回。
// 支持通过 ctx 取消；单个任务失败只记录在对应结果上，不影响其他任务。
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	inputCh := make(chan int, len(inputs))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-inputCh:
					if !ok {
						return
					}
					result, err := p.process(ctx, inputs[idx])
					results[idx] = Task[T, R]{Input: inputs[idx], Result: result, Err: err}
					if err != nil {
						log.Error().Err(err).Int("index", idx).Msg("任务处理失败")
					}
				}
			}
		}()
	}

	for i := range inputs {
		select {
		case <-ctx.Done():
		case inputCh <- i:
		}
	}
	close(inputCh)

	wg.Wait()
	return results
}
