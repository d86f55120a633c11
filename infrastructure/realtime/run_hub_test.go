package realtime

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"youtube-etl/domain/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_ServeStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewRunHub()
	router := gin.New()
	router.GET("/events", hub.Serve)
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	msg := "quotaExceeded"
	hub.PublishTask(&model.TaskInstance{RunID: "r1", TaskID: "fetch_youtube_data", State: model.StateUpForRetry, TryNumber: 1, Error: &msg})
	hub.PublishRun(&model.DagRun{ID: "r1", DagID: "youtube_topic_etl", State: model.StateSuccess})

	reader := bufio.NewReader(resp.Body)
	var events []RunEvent
	var names []string
	for len(events) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "event:"):
			names = append(names, strings.TrimSpace(strings.TrimPrefix(line, "event:")))
		case strings.HasPrefix(line, "data:"):
			var evt RunEvent
			require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &evt))
			events = append(events, evt)
		}
	}

	assert.Equal(t, []string{EventTask, EventRun}, names)
	assert.Equal(t, "fetch_youtube_data", events[0].TaskID)
	assert.Equal(t, model.StateUpForRetry, events[0].State)
	require.NotNil(t, events[0].Error)
	assert.Equal(t, "quotaExceeded", *events[0].Error)
	assert.Equal(t, "youtube_topic_etl", events[1].DagID)
	assert.Equal(t, model.StateSuccess, events[1].State)
}

func TestHub_BroadcastDoesNotBlock(t *testing.T) {
	hub := NewRunHub()
	ch := make(chan RunEvent, 1)
	hub.addSubscriber(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.PublishRun(&model.DagRun{ID: "r1", State: model.StateRunning})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full subscriber")
	}
	assert.Len(t, ch, 1)

	hub.removeSubscriber(ch)
	assert.Zero(t, hub.Subscribers())
	hub.PublishRun(nil)
	hub.PublishTask(nil)
}
