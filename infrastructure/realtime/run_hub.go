package realtime

import (
	"net/http"
	"sync"

	"youtube-etl/domain/model"
	"youtube-etl/domain/repository"

	"github.com/gin-gonic/gin"
)

const (
	EventRun  = "run_state"
	EventTask = "task_state"
)

// RunEvent represents an SSE payload for run and task state changes.
type RunEvent struct {
	Type      string  `json:"type"`
	RunID     string  `json:"run_id"`
	DagID     string  `json:"dag_id,omitempty"`
	TaskID    string  `json:"task_id,omitempty"`
	State     string  `json:"state"`
	TryNumber int     `json:"try_number,omitempty"`
	Error     *string `json:"error,omitempty"`
}

// Hub fans pipeline state changes out to every connected SSE client.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan RunEvent]struct{}
}

func NewRunHub() *Hub {
	return &Hub{subscribers: make(map[chan RunEvent]struct{})}
}

var _ repository.IRunEvents = (*Hub)(nil)

// Serve streams run events until the client disconnects.
func (h *Hub) Serve(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering
	c.Status(http.StatusOK)

	ch := make(chan RunEvent, 16)
	h.addSubscriber(ch)
	defer h.removeSubscriber(ch)

	// Initial comment to keep connection open
	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case evt := <-ch:
			c.SSEvent(evt.Type, evt)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) PublishRun(run *model.DagRun) {
	if run == nil {
		return
	}
	h.broadcast(RunEvent{Type: EventRun, RunID: run.ID, DagID: run.DagID, State: run.State})
}

func (h *Hub) PublishTask(task *model.TaskInstance) {
	if task == nil {
		return
	}
	h.broadcast(RunEvent{
		Type:      EventTask,
		RunID:     task.RunID,
		TaskID:    task.TaskID,
		State:     task.State,
		TryNumber: task.TryNumber,
		Error:     task.Error,
	})
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) addSubscriber(ch chan RunEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[ch] = struct{}{}
}

func (h *Hub) removeSubscriber(ch chan RunEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// broadcast never blocks; events for a full subscriber are dropped.
func (h *Hub) broadcast(evt RunEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
