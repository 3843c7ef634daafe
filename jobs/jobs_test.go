package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/stockdesk/internal/entities"
	jobmetrics "github.com/odyssey-erp/stockdesk/internal/jobs"
	"github.com/odyssey-erp/stockdesk/internal/lookups"
	"github.com/odyssey-erp/stockdesk/internal/stock"
)

type fakeLookups struct {
	dashboard   lookups.Dashboard
	err         error
	loads       int
	invalidated int
}

func (f *fakeLookups) Dashboard(context.Context) (lookups.Dashboard, error) {
	f.loads++
	return f.dashboard, f.err
}

func (f *fakeLookups) Invalidate(context.Context) { f.invalidated++ }

func newJob(t *testing.T, svc Lookups) (*WarmupJob, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewWarmupJob(svc, nil, jobmetrics.NewMetrics(reg)), reg
}

func TestWarmupLoadsDashboard(t *testing.T) {
	svc := &fakeLookups{dashboard: lookups.Dashboard{
		Stock:           stock.Summary{Parts: []stock.Part{{Component: "R1", Available: 2}}},
		RecentPurchases: []entities.Purchase{{ID: "1"}},
		RecentSales:     []entities.SoldProduct{},
		CategoryCounts:  []lookups.CategoryCount{{Category: "A", Products: 3}},
	}}
	job, reg := newJob(t, svc)
	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, svc.loads)
	assert.Zero(t, svc.invalidated)

	count, err := testutil.GatherAndCount(reg, "stockdesk_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "stockdesk_lookups_warmed_total" {
			assert.Equal(t, float64(4), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestWarmupInvalidatesWhenAsked(t *testing.T) {
	svc := &fakeLookups{}
	job, _ := newJob(t, svc)
	task, err := NewWarmupTask(WarmupPayload{Invalidate: true})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, svc.invalidated)
	assert.Equal(t, 1, svc.loads)
}

func TestWarmupReportsFailures(t *testing.T) {
	svc := &fakeLookups{err: errors.New("backend down")}
	job, reg := newJob(t, svc)
	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)

	assert.EqualError(t, job.Handle(context.Background(), task), "backend down")
	mfs, err := reg.Gather()
	require.NoError(t, err)
	var failures float64
	for _, mf := range mfs {
		if mf.GetName() != "stockdesk_jobs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == "failure" {
					failures += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, float64(1), failures)
}

func TestWarmupSkipsRetryOnBadPayload(t *testing.T) {
	svc := &fakeLookups{}
	job, _ := newJob(t, svc)
	err := job.Handle(context.Background(), asynq.NewTask(TaskLookupsWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, svc.loads)
}

func TestInvalidateTask(t *testing.T) {
	svc := &fakeLookups{}
	job, _ := newJob(t, svc)
	require.NoError(t, job.HandleInvalidate(context.Background(), NewInvalidateTask()))
	assert.Equal(t, 1, svc.invalidated)
}

func TestNilJobRefusesWork(t *testing.T) {
	var job *WarmupJob
	assert.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskLookupsWarmup, nil)))
}

func TestNewWorkerNeedsHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		want      queueHealth
	}{
		{name: "no inspector", status: http.StatusOK, want: queueHealth{Queue: QueueDefault}},
		{name: "queue info", inspector: fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3, Retry: 1}}, status: http.StatusOK, want: queueHealth{Queue: "default", Pending: 3, Retry: 1}},
		{name: "queue not created yet", inspector: fakeInspector{err: asynq.ErrQueueNotFound}, status: http.StatusOK, want: queueHealth{Queue: QueueDefault}},
		{name: "redis down", inspector: fakeInspector{err: errors.New("dial tcp")}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.status, rec.Code)
			if tc.status != http.StatusOK {
				return
			}
			var got queueHealth
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tc.want, got)
		})
	}
}
