package database

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-policy-workers/internal/common/config"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range Schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	client := &PostgresClient{DB: db}
	require.NoError(t, client.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS submitter_profiles").WillReturnError(assert.AnError)

	client := &PostgresClient{DB: db}
	err = client.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply schema")
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestRedisClient_Keys(t *testing.T) {
	assert.Equal(t, "agetier:user-1", TierKey("user-1"))
	assert.Equal(t, "decision:latest:story-1:story", LatestDecisionKey("story-1", "story"))
	assert.Equal(t, "notify:d-1:moderation", NotificationKey("d-1", "moderation"))
}

func TestRedisClient_Caches(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	_, found, err := client.CachedTier(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.CacheTier(ctx, "user-1", []byte(`{"targetAgeTier":"adult"}`), time.Minute))
	data, found, err := client.CachedTier(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"targetAgeTier":"adult"}`, string(data))
	assert.Equal(t, time.Minute, mr.TTL(TierKey("user-1")))

	require.NoError(t, client.CacheLatestDecision(ctx, "story-1", "story", []byte(`{"id":"d-1"}`), time.Hour))
	assert.True(t, mr.Exists(LatestDecisionKey("story-1", "story")))

	_, found, err = client.SentNotification(ctx, "d-1", "email")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.RecordNotification(ctx, "d-1", "email", "ses-1", time.Hour))
	id, found, err := client.SentNotification(ctx, "d-1", "email")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ses-1", id)
}

func TestRedisClient_GetBytesUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()
	mr.Close()

	_, found, err := client.GetBytes(context.Background(), "anything")
	assert.Error(t, err)
	assert.False(t, found)
}

type recordingTransport struct {
	requests []*http.Request
	status   map[string]int
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.requests = append(rt.requests, req)
	status := http.StatusOK
	if s, ok := rt.status[req.Method]; ok {
		status = s
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}},
		Body:       io.NopCloser(strings.NewReader(`{}`)),
	}, nil
}

func TestEnsureDecisionIndex(t *testing.T) {
	tests := []struct {
		name        string
		headStatus  int
		wantMethods []string
	}{
		{"index exists", http.StatusOK, []string{http.MethodHead}},
		{"index created", http.StatusNotFound, []string{http.MethodHead, http.MethodPut}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &recordingTransport{status: map[string]int{http.MethodHead: tt.headStatus}}
			es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{"http://es:9200"}}, rt)
			require.NoError(t, err)

			require.NoError(t, es.EnsureDecisionIndex(context.Background(), "policy-decisions"))

			var methods []string
			for _, r := range rt.requests {
				methods = append(methods, r.Method)
				assert.Equal(t, "/policy-decisions", r.URL.Path)
			}
			assert.Equal(t, tt.wantMethods, methods)
		})
	}
}
