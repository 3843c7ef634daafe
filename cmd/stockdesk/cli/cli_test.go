package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/stockdesk/jobs"
)

type stubClient struct {
	tasks []*asynq.Task
}

func (s *stubClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "t-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubClient) Close() error { return nil }

type stubInspector struct {
	info      *asynq.QueueInfo
	err       error
	scheduled []*asynq.TaskInfo
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func (s stubInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return s.scheduled, nil
}

func (s stubInspector) Close() error { return nil }

func TestTriggerKnownJobs(t *testing.T) {
	client := &stubClient{}
	c := &JobsCLI{client: client}

	var out bytes.Buffer
	require.NoError(t, RunJobs(context.Background(), c, []string{"trigger", jobs.TaskLookupsWarmup}, &out))
	require.NoError(t, RunJobs(context.Background(), c, []string{"trigger", jobs.TaskLookupsInvalidate}, &out))
	require.Len(t, client.tasks, 2)
	assert.JSONEq(t, `{"invalidate":true}`, string(client.tasks[0].Payload()))
	assert.Equal(t, jobs.TaskLookupsInvalidate, client.tasks[1].Type())
	assert.Contains(t, out.String(), "enqueued lookups:warmup id=t-1 queue=default")

	_, err := c.Trigger(context.Background(), "mail:send")
	assert.EqualError(t, err, "jobs cli: unsupported job mail:send")
}

func TestQueueStats(t *testing.T) {
	c := &JobsCLI{inspector: stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 2, Scheduled: 1}}}
	var out bytes.Buffer
	require.NoError(t, RunJobs(context.Background(), c, []string{"stats"}, &out))
	assert.Equal(t, "queue=default pending=2 active=0 scheduled=1 retry=0\n", out.String())

	empty := &JobsCLI{inspector: stubInspector{err: asynq.ErrQueueNotFound}}
	stats, err := empty.InspectQueue()
	require.NoError(t, err)
	assert.Equal(t, QueueStats{Queue: jobs.QueueDefault}, stats)
}

func TestScheduledListing(t *testing.T) {
	next := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &JobsCLI{inspector: stubInspector{scheduled: []*asynq.TaskInfo{{ID: "a", Type: jobs.TaskLookupsWarmup, NextProcessAt: next}}}}
	var out bytes.Buffer
	require.NoError(t, RunJobs(context.Background(), c, []string{"scheduled"}, &out))
	assert.Equal(t, "a lookups:warmup next=2024-06-01T12:00:00Z\n", out.String())
}

func TestUsageErrors(t *testing.T) {
	c := &JobsCLI{client: &stubClient{}}
	for _, args := range [][]string{nil, {"trigger"}, {"purge"}} {
		assert.ErrorIs(t, RunJobs(context.Background(), c, args, &bytes.Buffer{}), ErrUsage)
	}
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, HashPassword(strings.NewReader("s3cret\n"), &out))
	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	assert.Error(t, HashPassword(strings.NewReader("\n"), &bytes.Buffer{}))
}
