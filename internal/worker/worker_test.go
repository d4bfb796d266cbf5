package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/jobModel"
	"github.com/akolanti/docqa/internal/job"
	"github.com/akolanti/docqa/internal/rag"
)

// MockRagService tracks which jobs were executed
type MockRagService struct {
	ProcessedCount int32
	OnProcess      func(j jobModel.Job) jobModel.Job
}

func (m *MockRagService) Ask(ctx context.Context, question string) (rag.AskResult, error) {
	return rag.AskResult{}, errors.New("not used")
}

func (m *MockRagService) Ingest(ctx context.Context, content []byte, displayName string) (rag.IngestResult, error) {
	return rag.IngestResult{}, errors.New("not used")
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcess != nil {
		return m.OnProcess(j)
	}
	j.JobPayload.Answer = "answer to " + j.JobPayload.Question
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	j.JobPayload.DocumentId = "doc"
	j.JobPayload.ChunkCount = 3
	j.CurrentStep = jobModel.Complete
	return j
}

func (m *MockRagService) CollectionInfo(ctx context.Context) (commonModels.CollectionInfo, error) {
	return commonModels.CollectionInfo{}, nil
}

type MockJobStore struct {
	mu    sync.Mutex
	saved []jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, j)
	return nil
}

func (m *MockJobStore) statuses(jobId string) []jobModel.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []jobModel.JobStatus
	for _, j := range m.saved {
		if j.Id == jobId {
			out = append(out, j.Status)
		}
	}
	return out
}

// MockMessageStore records saved exchanges
type MockMessageStore struct {
	mu    sync.Mutex
	saved map[string][]jobModel.Exchange
}

func (m *MockMessageStore) ValidateChatId(ctx context.Context, id string) bool { return true }

func (m *MockMessageStore) InitNewChat(ctx context.Context, id string) error { return nil }

func (m *MockMessageStore) GetMessageHistory(ctx context.Context, id string) ([]jobModel.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[id], nil
}

func (m *MockMessageStore) TrySaveChat(ctx context.Context, id string, e jobModel.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string][]jobModel.Exchange{}
	}
	m.saved[id] = append(m.saved[id], e)
	return nil
}

func resetPool() {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 1)
	atomic.StoreInt64(&maxWorkerCount, 2)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorkerPool_Flow(t *testing.T) {
	resetPool()
	jobStore := &MockJobStore{}
	messageStore := &MockMessageStore{}
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          jobStore,
		MessageStore:      messageStore,
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Pool starts with one worker", func(t *testing.T) {
		if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
			t.Errorf("Expected 1 worker, got %d", count)
		}
	})

	t.Run("Dispatcher respects the maximum", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			jobSvc.DispatcherChannel <- true
		}
		waitFor(t, func() bool { return len(jobSvc.DispatcherChannel) == 0 })
		time.Sleep(20 * time.Millisecond)
		if count := atomic.LoadInt64(&currentWorkerCount); count != 2 {
			t.Errorf("Expected 2 workers, got %d", count)
		}
	})

	t.Run("Query job saves the exchange", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "q-1", ChatId: "chat-1", JobType: jobModel.JobTypeQuery, JobPayload: jobModel.JobPayload{Question: "why?"}}

		waitFor(t, func() bool {
			s := jobStore.statuses("q-1")
			return len(s) == 2
		})
		s := jobStore.statuses("q-1")
		if s[0] != jobModel.JobStatusRunning || s[1] != jobModel.JobStatusComplete {
			t.Errorf("unexpected status sequence %v", s)
		}
		history, _ := messageStore.GetMessageHistory(context.Background(), "chat-1")
		if len(history) != 1 || history[0].Answer != "answer to why?" {
			t.Errorf("unexpected history %+v", history)
		}
	})

	t.Run("Failed job keeps its error status", func(t *testing.T) {
		mockRag.OnProcess = func(j jobModel.Job) jobModel.Job {
			j.Status = jobModel.JobStatusError
			j.Error = jobModel.JobError{Code: 502, Message: "RERANK_FAILURE", Retry: true}
			return j
		}
		defer func() { mockRag.OnProcess = nil }()

		jobSvc.JobChannel <- jobModel.Job{Id: "q-2", ChatId: "chat-2", JobType: jobModel.JobTypeQuery}
		waitFor(t, func() bool { return len(jobStore.statuses("q-2")) == 2 })

		final, _ := jobStore.GetJob(context.Background(), "q-2")
		if final.Status != jobModel.JobStatusError || final.Error.Code != 502 {
			t.Errorf("unexpected final job %+v", final)
		}
		if history, _ := messageStore.GetMessageHistory(context.Background(), "chat-2"); len(history) != 0 {
			t.Error("failed answers are not saved to history")
		}
	})

	t.Run("Ingest job completes", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "i-1", JobType: jobModel.JobTypeIngest}
		waitFor(t, func() bool { return len(jobStore.statuses("i-1")) == 2 })

		final, _ := jobStore.GetJob(context.Background(), "i-1")
		if final.Status != jobModel.JobStatusComplete || final.JobPayload.ChunkCount != 3 {
			t.Errorf("unexpected final job %+v", final)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	resetPool()
	previous := idleWorkerTimeout
	idleWorkerTimeout = 20 * time.Millisecond
	defer func() { idleWorkerTimeout = previous }()

	jobSvc := &job.Service{JobChannel: make(chan jobModel.Job)}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan
	defer func() {
		close(stopChan)
		wg.Wait()
	}()

	createWorker()
	createWorker()

	// one worker retires, the minimum stays
	waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) == 1 })
	time.Sleep(100 * time.Millisecond)
	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("Pool should not shrink below its minimum, count is %d", count)
	}
}

func TestExecuteJob_RecordsFinalStatus(t *testing.T) {
	tests := []struct {
		name    string
		process func(j jobModel.Job) jobModel.Job
		want    string
	}{
		{"Success", nil, string(jobModel.JobStatusComplete)},
		{"Failure", func(j jobModel.Job) jobModel.Job {
			j.Status = jobModel.JobStatusError
			return j
		}, string(jobModel.JobStatusError)},
	}

	previous := recordJobDuration
	defer func() { recordJobDuration = previous }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorded []string
			recordJobDuration = func(label string, _ time.Duration) {
				recorded = append(recorded, label)
			}
			jobSvc := &job.Service{JobStore: &MockJobStore{}, MessageStore: &MockMessageStore{}}
			InitServices(jobSvc, &MockRagService{OnProcess: tt.process})

			executeJob(jobModel.Job{Id: "m-1", JobType: jobModel.JobTypeQuery, Status: jobModel.JobStatusQueued})

			if len(recorded) != 1 || recorded[0] != tt.want {
				t.Errorf("recorded %v, want [%s]", recorded, tt.want)
			}
		})
	}
}
