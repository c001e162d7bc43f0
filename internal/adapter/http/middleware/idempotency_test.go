package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisrepo "github.com/iho/debtledger/internal/adapter/repository/redis"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	released      []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func postWithKey(key, owner string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/debts/d1/pay", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	if owner != "" {
		req = req.WithContext(WithActor(req.Context(), domain.Actor{ID: owner}))
	}
	return req
}

func TestIdempotencyMiddleware_StoreErrorRejectsRequest(t *testing.T) {
	called := false
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, 0)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, postWithKey("key-err", "owner-1"))

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	updated := false
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, 0)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})).ServeHTTP(rr, postWithKey("key-fail", "owner-1"))

	assert.False(t, updated)
	assert.Equal(t, []string{"owner-1:key-fail"}, store.released)
}

func TestIdempotencyMiddleware_SkipsReads(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatalf("store must not be consulted for GET")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/debts", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-get")

	called := false
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}

func TestIdempotencyMiddleware_PendingIsConflict(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(usecase.IdempotencyPending), nil
		},
	}
	mw := NewIdempotencyMiddleware(store, 0)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the key is pending")
	})).ServeHTTP(rr, postWithKey("key-busy", "owner-1"))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestIdempotencyMiddleware_UsesConfiguredTTL(t *testing.T) {
	var ttls []time.Duration
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			ttls = append(ttls, ttl)
			return false, nil, nil
		},
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			ttls = append(ttls, ttl)
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour)

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})).ServeHTTP(httptest.NewRecorder(), postWithKey("key-ttl", "owner-1"))

	assert.Equal(t, []time.Duration{time.Hour, time.Hour}, ttls)
}

func TestIdempotencyMiddleware_ReplaysWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mw := NewIdempotencyMiddleware(redisrepo.NewIdempotencyStore(client), time.Minute)

	calls := 0
	h := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"remaining":"70"}`))
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, postWithKey("pay-1", "owner-1"))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, postWithKey("pay-1", "owner-1"))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replay"))
	assert.JSONEq(t, `{"remaining":"70"}`, second.Body.String())

	other := httptest.NewRecorder()
	h.ServeHTTP(other, postWithKey("pay-1", "owner-2"))

	assert.Equal(t, 2, calls)
	assert.Empty(t, other.Header().Get("X-Idempotency-Replay"))
}
