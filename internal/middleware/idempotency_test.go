package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pouch/internal/middleware"
	"pouch/internal/repository"
)

// memoryIdempotencyStore mirrors the database repository's contract:
// reads miss on unknown keys and writes keep the first record for a key.
type memoryIdempotencyStore struct {
	mu      sync.Mutex
	records map[string]*repository.IdempotencyRecord
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{records: map[string]*repository.IdempotencyRecord{}}
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (*repository.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[key], nil
}

func (s *memoryIdempotencyStore) Set(_ context.Context, rec *repository.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.Key]; !exists {
		s.records[rec.Key] = rec
	}
	return nil
}

func newCountingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"data":{"n":1}}`))
	})
}

func TestIdempotency_MissingKeyRejected(t *testing.T) {
	var calls int
	wrapped := middleware.Idempotency(newMemoryIdempotencyStore(), time.Hour)(newCountingHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/api/wallet/transact", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, calls, "handler must not run without a key")

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_IDEMPOTENCY_KEY", body.Error.Code)
}

func TestIdempotency_GetPassesThroughWithoutKey(t *testing.T) {
	var calls int
	wrapped := middleware.Idempotency(newMemoryIdempotencyStore(), time.Hour)(newCountingHandler(&calls))

	req := httptest.NewRequest(http.MethodGet, "/api/wallet/balance/abc", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_ReplayDoesNotReinvokeHandler(t *testing.T) {
	var calls int
	store := newMemoryIdempotencyStore()
	wrapped := middleware.Idempotency(store, time.Hour)(newCountingHandler(&calls))

	payload := []byte(`{"amount":"10"}`)

	first := httptest.NewRequest(http.MethodPost, "/api/wallet/transact", bytes.NewReader(payload))
	first.Header.Set("Idempotency-Key", "key-1")
	rr1 := httptest.NewRecorder()
	wrapped.ServeHTTP(rr1, first)

	require.Equal(t, http.StatusOK, rr1.Code)
	require.Equal(t, 1, calls)
	assert.Empty(t, rr1.Header().Get("X-Idempotent-Replayed"))

	retry := httptest.NewRequest(http.MethodPost, "/api/wallet/transact", bytes.NewReader(payload))
	retry.Header.Set("Idempotency-Key", "key-1")
	rr2 := httptest.NewRecorder()
	wrapped.ServeHTTP(rr2, retry)

	assert.Equal(t, http.StatusOK, rr2.Code)
	assert.Equal(t, 1, calls, "replay must not reach the handler")
	assert.Equal(t, "true", rr2.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, rr1.Body.String(), rr2.Body.String())
}

// A reused key with a different payload is a client bug, not a retry.
func TestIdempotency_PayloadMismatchConflicts(t *testing.T) {
	var calls int
	store := newMemoryIdempotencyStore()
	wrapped := middleware.Idempotency(store, time.Hour)(newCountingHandler(&calls))

	first := httptest.NewRequest(http.MethodPost, "/api/wallet/transact", bytes.NewReader([]byte(`{"amount":"10"}`)))
	first.Header.Set("Idempotency-Key", "key-1")
	wrapped.ServeHTTP(httptest.NewRecorder(), first)
	require.Equal(t, 1, calls)

	conflicting := httptest.NewRequest(http.MethodPost, "/api/wallet/transact", bytes.NewReader([]byte(`{"amount":"999"}`)))
	conflicting.Header.Set("Idempotency-Key", "key-1")
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, conflicting)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, 1, calls)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", body.Error.Code)
}

// Concurrent first-time requests on one key race past the lookup, but
// the store keeps whichever response committed first and every later
// retry replays exactly that record.
func TestIdempotency_ConcurrentDuplicatesConvergeOnOneRecord(t *testing.T) {
	store := newMemoryIdempotencyStore()

	var invocations atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := invocations.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"success":true,"data":{"attempt":%d}}`, n)
	})
	wrapped := middleware.Idempotency(store, time.Hour)(handler)

	payload := []byte(`{"amount":"10"}`)
	const racers = 8

	var wg sync.WaitGroup
	bodies := make(chan string, racers)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/wallet/transact", bytes.NewReader(payload))
			req.Header.Set("Idempotency-Key", "key-race")
			rr := httptest.NewRecorder()
			wrapped.ServeHTTP(rr, req)
			bodies <- rr.Body.String()
		}()
	}
	wg.Wait()
	close(bodies)

	rec, err := store.Get(context.Background(), "key-race")
	require.NoError(t, err)
	require.NotNil(t, rec)

	produced := false
	for body := range bodies {
		if body == string(rec.ResponseBody) {
			produced = true
		}
	}
	assert.True(t, produced, "stored record must be one of the raced responses")

	retry := httptest.NewRequest(http.MethodPost, "/api/wallet/transact", bytes.NewReader(payload))
	retry.Header.Set("Idempotency-Key", "key-race")
	rr := httptest.NewRecorder()
	before := invocations.Load()
	wrapped.ServeHTTP(rr, retry)

	assert.Equal(t, "true", rr.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, string(rec.ResponseBody), rr.Body.String())
	assert.Equal(t, before, invocations.Load(), "retry after settlement must not reach the handler")
}

// Rejections are recorded too: retrying a failed request must replay
// the failure, not re-run the transfer.
func TestIdempotency_ErrorResponsesAreReplayed(t *testing.T) {
	var calls int
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"error":{"code":"INSUFFICIENT_FUNDS"}}`))
	})
	wrapped := middleware.Idempotency(newMemoryIdempotencyStore(), time.Hour)(failing)

	payload := []byte(`{"amount":"10"}`)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/wallet/transact", bytes.NewReader(payload))
		req.Header.Set("Idempotency-Key", "key-1")
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	}

	assert.Equal(t, 1, calls)
}
