package renderer

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/scene"
)

type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

type fakeSwapChain struct {
	rec     *recorder
	indices []uint32
	calls   int
	err     error
}

func (s *fakeSwapChain) CurrentBackBufferIndex() (uint32, error) {
	if s.err != nil {
		return 0, s.err
	}
	idx := s.indices[s.calls%len(s.indices)]
	s.calls++
	s.rec.add("index %d", idx)
	return idx, nil
}

func (s *fakeSwapChain) Present(imageIndex, syncInterval uint32) error {
	s.rec.add("present %d %d", imageIndex, syncInterval)
	return nil
}

func (s *fakeSwapChain) BufferCount() uint32 { return BufferCount }

type fakeCommandList struct {
	rec    *recorder
	closed bool
	resets int
}

func (l *fakeCommandList) Reset() error {
	if !l.closed && l.resets > 0 {
		return errors.New("reset while recording")
	}
	l.resets++
	l.closed = false
	l.rec.add("reset")
	return nil
}

func (l *fakeCommandList) ResourceBarrier(imageIndex uint32, before, after ResourceState) {
	l.rec.add("barrier %d %s->%s", imageIndex, before, after)
}
func (l *fakeCommandList) BeginRenderTarget(imageIndex uint32) { l.rec.add("begin %d", imageIndex) }
func (l *fakeCommandList) ClearRenderTarget(c math.Vec4) {
	l.rec.add("clear %.1f %.1f %.1f %.1f", c.X, c.Y, c.Z, c.W)
}
func (l *fakeCommandList) SetViewportAndScissor(w, h uint32) { l.rec.add("viewport %dx%d", w, h) }
func (l *fakeCommandList) BindPipeline()                     { l.rec.add("pipeline") }
func (l *fakeCommandList) BindConstants()                    { l.rec.add("bind constants") }
func (l *fakeCommandList) SetPrimitiveTopology(PrimitiveTopology) {
	l.rec.add("topology")
}
func (l *fakeCommandList) BindVertexBuffer()       { l.rec.add("vertex buffer") }
func (l *fakeCommandList) Draw(vertices, instances uint32) {
	l.rec.add("draw %d %d", vertices, instances)
}
func (l *fakeCommandList) EndRenderTarget() { l.rec.add("end") }
func (l *fakeCommandList) Close() error {
	l.closed = true
	l.rec.add("close")
	return nil
}

type fakeConstants struct {
	rec     *recorder
	written []math.Mat4
}

func (c *fakeConstants) Write(m math.Mat4) error {
	c.written = append(c.written, m)
	c.rec.add("write constants")
	return nil
}

// fakeFence completes signaled values asynchronously after a delay.
type fakeFence struct {
	mu        sync.Mutex
	cond      *sync.Cond
	completed uint64
	waits     int
}

func newFakeFence() *fakeFence {
	f := &fakeFence{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *fakeFence) complete(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = value
	f.cond.Broadcast()
}

func (f *fakeFence) CompletedValue() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed, nil
}

func (f *fakeFence) WaitFor(value uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits++
	for f.completed < value {
		f.cond.Wait()
	}
	return nil
}

type fakeQueue struct {
	rec      *recorder
	list     *fakeCommandList
	signaled []uint64
	delay    time.Duration
	execErr  error
}

func (q *fakeQueue) Execute(list CommandList) error {
	if q.execErr != nil {
		return q.execErr
	}
	if !q.list.closed {
		return errors.New("executed an open command list")
	}
	q.rec.add("execute")
	return nil
}

func (q *fakeQueue) Signal(fence Fence, value uint64) error {
	q.signaled = append(q.signaled, value)
	q.rec.add("signal %d", value)
	f := fence.(*fakeFence)
	if q.delay == 0 {
		f.complete(value)
		return nil
	}
	go func() {
		time.Sleep(q.delay)
		f.complete(value)
	}()
	return nil
}

type harness struct {
	rec       *recorder
	swap      *fakeSwapChain
	list      *fakeCommandList
	constants *fakeConstants
	fence     *fakeFence
	queue     *fakeQueue
	ctrl      *FrameCycleController
}

func newHarness(t *testing.T, delay time.Duration, indices ...uint32) *harness {
	t.Helper()
	rec := &recorder{}
	h := &harness{
		rec:       rec,
		swap:      &fakeSwapChain{rec: rec, indices: indices},
		list:      &fakeCommandList{rec: rec},
		constants: &fakeConstants{rec: rec},
		fence:     newFakeFence(),
	}
	h.queue = &fakeQueue{rec: rec, list: h.list, delay: delay}

	ctrl, err := NewFrameCycleController(FrameContext{
		SwapChain:   h.swap,
		Queue:       h.queue,
		CommandList: h.list,
		Constants:   h.constants,
		Fence:       h.fence,
		Width:       RenderWidth,
		Height:      RenderHeight,
	}, scene.NewTransform(float32(RenderWidth)/float32(RenderHeight), true))
	require.NoError(t, err)
	h.ctrl = ctrl
	return h
}

func TestRenderFrameRecordsInOrder(t *testing.T) {
	h := newHarness(t, 0, 1)
	require.NoError(t, h.ctrl.RenderFrame(1))

	assert.Equal(t, []string{
		"index 1",
		"reset",
		"barrier 1 present->render-target",
		"begin 1",
		"clear 0.5 0.5 0.5 1.0",
		"viewport 1280x720",
		"pipeline",
		"bind constants",
		"write constants",
		"topology",
		"vertex buffer",
		"draw 3 1",
		"end",
		"barrier 1 render-target->present",
		"close",
		"execute",
		"present 1 1",
		"signal 1",
	}, h.rec.events)
}

func TestRenderFrameUsesCurrentBackBufferEachCall(t *testing.T) {
	h := newHarness(t, 0, 0, 1)
	require.NoError(t, h.ctrl.RenderFrame(1))
	require.NoError(t, h.ctrl.RenderFrame(2))

	assert.Equal(t, []uint64{1, 2}, h.queue.signaled)
	assert.Contains(t, h.rec.events, "present 0 1")
	assert.Contains(t, h.rec.events, "present 1 1")
	assert.Contains(t, h.rec.events, "barrier 1 present->render-target")
	assert.Equal(t, uint64(2), h.ctrl.LastFrame())
}

func TestRenderFrameWaitsForFence(t *testing.T) {
	h := newHarness(t, 20*time.Millisecond, 0, 1)

	for frame := uint64(1); frame <= 5; frame++ {
		require.NoError(t, h.ctrl.RenderFrame(frame))

		completed, err := h.fence.CompletedValue()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, completed, frame)
		assert.True(t, h.list.closed, "command list left open after frame %d", frame)
	}
	assert.Equal(t, 5, h.fence.waits)
}

func TestRenderFrameSkipsWaitWhenAlreadyComplete(t *testing.T) {
	h := newHarness(t, 0, 0)
	require.NoError(t, h.ctrl.RenderFrame(1))
	assert.Zero(t, h.fence.waits)
}

func TestRenderFrameRejectsOutOfOrderIDs(t *testing.T) {
	h := newHarness(t, 0, 0, 1)
	require.NoError(t, h.ctrl.RenderFrame(3))
	h.rec.events = nil

	for _, id := range []uint64{3, 2, 0} {
		err := h.ctrl.RenderFrame(id)
		assert.ErrorIs(t, err, core.ErrFrameOutOfOrder)
	}
	assert.Empty(t, h.rec.events, "no GPU work for rejected frames")

	require.NoError(t, h.ctrl.RenderFrame(10))
	assert.Equal(t, []uint64{3, 10}, h.queue.signaled)
}

func TestRenderFrameWritesCurrentTransform(t *testing.T) {
	h := newHarness(t, 0, 0)
	h.ctrl.Advance(1.0)
	require.NoError(t, h.ctrl.RenderFrame(1))

	require.Len(t, h.constants.written, 1)
	assert.Equal(t, h.ctrl.Transform().ObjectToClip(), h.constants.written[0])
}

func TestRenderFrameWrapsStepErrors(t *testing.T) {
	h := newHarness(t, 0, 0)
	boom := errors.New("device lost")
	h.queue.execErr = boom

	err := h.ctrl.RenderFrame(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "execute command list")
	assert.Empty(t, h.queue.signaled)
}

func TestRenderFrameRejectsOutOfRangeIndex(t *testing.T) {
	h := newHarness(t, 0, BufferCount)
	err := h.ctrl.RenderFrame(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire back buffer")
}

func TestNewFrameCycleControllerValidatesContext(t *testing.T) {
	_, err := NewFrameCycleController(FrameContext{}, scene.NewTransform(1, false))
	assert.Error(t, err)
}
