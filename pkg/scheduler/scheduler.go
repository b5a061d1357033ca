// Package scheduler 提供单线程的回调调度器
//
// 所有回调（帧回调、周期定时器、一次性定时器）都在宿主调用 RunTimers / RunFrame
// 的同一个 goroutine 上执行，因此回调之间不需要加锁。
// Scheduler 同时是所有取消句柄的拥有者：Close() 会一次性取消全部回调。
package scheduler

import (
	"container/heap"
	"time"
)

// Handle 标识一个已注册的回调，用于取消
type Handle uint64

// maxCatchUp 周期定时器落后时最多补触发的次数
// 宿主长时间挂起（窗口最小化）后恢复时，超出部分直接跳过
const maxCatchUp = 16

// task 是一个已注册的定时回调
type task struct {
	handle   Handle
	due      time.Time
	interval time.Duration // 0 表示一次性定时器
	seq      uint64        // 相同到期时间按注册顺序触发
	fn       func()
	index    int
}

// Scheduler 单线程回调调度器
//
// 定时器按虚拟时间触发：回调执行期间 Now() 返回该定时器的到期时间，
// 因此回调中注册的后续定时器以到期时间为基准，与宿主泵送频率无关。
type Scheduler struct {
	clock Clock

	timers taskQueue
	tasks  map[Handle]*task

	frames      []frameCallback
	frameHandle map[Handle]bool

	nextHandle Handle
	seq        uint64

	firing   bool
	firingAt time.Time
	closed   bool
}

type frameCallback struct {
	handle Handle
	fn     func()
}

// New 创建调度器
// clock 为 nil 时使用系统时钟
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Scheduler{
		clock:       clock,
		tasks:       make(map[Handle]*task),
		frameHandle: make(map[Handle]bool),
		nextHandle:  1,
	}
}

// Now 返回调度器的当前时间
// 定时器回调执行期间返回该定时器的到期时间，其余时间返回时钟时间
func (s *Scheduler) Now() time.Time {
	if s.firing {
		return s.firingAt
	}
	return s.clock.Now()
}

// AfterFunc 注册一次性定时器，在 d 之后触发一次
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) Handle {
	return s.schedule(d, 0, fn)
}

// Every 注册周期定时器，每隔 interval 触发一次，直到被取消
// interval 小于 1ms 时按 1ms 处理
func (s *Scheduler) Every(interval time.Duration, fn func()) Handle {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return s.schedule(interval, interval, fn)
}

func (s *Scheduler) schedule(delay, interval time.Duration, fn func()) Handle {
	if s.closed || fn == nil {
		return 0
	}
	if delay < 0 {
		delay = 0
	}

	h := s.allocHandle()
	s.seq++
	t := &task{
		handle:   h,
		due:      s.Now().Add(delay),
		interval: interval,
		seq:      s.seq,
		fn:       fn,
	}
	s.tasks[h] = t
	heap.Push(&s.timers, t)
	return h
}

// RequestFrame 注册帧回调，每次 RunFrame 都会调用，直到被取消
func (s *Scheduler) RequestFrame(fn func()) Handle {
	if s.closed || fn == nil {
		return 0
	}
	h := s.allocHandle()
	s.frames = append(s.frames, frameCallback{handle: h, fn: fn})
	s.frameHandle[h] = true
	return h
}

func (s *Scheduler) allocHandle() Handle {
	h := s.nextHandle
	s.nextHandle++
	return h
}

// Cancel 取消一个回调
// 返回 false 表示句柄不存在、已触发（一次性定时器）或已被取消
func (s *Scheduler) Cancel(h Handle) bool {
	if t, ok := s.tasks[h]; ok {
		delete(s.tasks, h)
		if t.index >= 0 {
			heap.Remove(&s.timers, t.index)
		}
		return true
	}
	if s.frameHandle[h] {
		delete(s.frameHandle, h)
		for i, f := range s.frames {
			if f.handle == h {
				s.frames = append(s.frames[:i], s.frames[i+1:]...)
				break
			}
		}
		return true
	}
	return false
}

// RunTimers 按到期顺序触发所有到期（due <= clock.Now()）的定时器
// 返回本次触发的回调数量
func (s *Scheduler) RunTimers() int {
	if s.closed {
		return 0
	}

	target := s.clock.Now()
	fired := 0
	for !s.closed && len(s.timers) > 0 {
		t := s.timers[0]
		if t.due.After(target) {
			break
		}
		heap.Pop(&s.timers)

		if t.interval > 0 {
			// 先重新入队，回调内部可以 Cancel 自己
			next := t.due.Add(t.interval)
			if missed := int64(target.Sub(next) / t.interval); missed > maxCatchUp {
				next = next.Add(time.Duration(missed-maxCatchUp) * t.interval)
			}
			due := t.due
			t.due = next
			s.seq++
			t.seq = s.seq
			heap.Push(&s.timers, t)
			s.fire(due, t.fn)
		} else {
			delete(s.tasks, t.handle)
			s.fire(t.due, t.fn)
		}
		fired++
	}
	return fired
}

func (s *Scheduler) fire(at time.Time, fn func()) {
	s.firing = true
	s.firingAt = at
	defer func() { s.firing = false }()
	fn()
}

// RunFrame 调用所有帧回调（每个重绘 tick 调用一次）
func (s *Scheduler) RunFrame() {
	if s.closed || len(s.frames) == 0 {
		return
	}
	// 复制一份，回调内部注册/取消不影响本轮遍历
	frames := append([]frameCallback(nil), s.frames...)
	for _, f := range frames {
		if s.closed {
			return
		}
		if !s.frameHandle[f.handle] {
			continue
		}
		f.fn()
	}
}

// PendingTimers 返回尚未触发（或周期性）的定时器数量
func (s *Scheduler) PendingTimers() int {
	return len(s.tasks)
}

// FrameCallbacks 返回已注册的帧回调数量
func (s *Scheduler) FrameCallbacks() int {
	return len(s.frames)
}

// Close 取消所有回调，之后注册的回调会被忽略
// 可重复调用
func (s *Scheduler) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.timers = nil
	s.tasks = make(map[Handle]*task)
	s.frames = nil
	s.frameHandle = make(map[Handle]bool)
}

// Closed 返回调度器是否已关闭
func (s *Scheduler) Closed() bool {
	return s.closed
}

// taskQueue 是按 (due, seq) 排序的最小堆
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
