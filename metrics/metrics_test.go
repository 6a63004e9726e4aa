package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndServe(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordValidation(true)
	m.RecordValidation(false)
	m.RecordValidation(false)
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheEviction()
	m.RecordUpstream("create_poll", 20*time.Millisecond, nil)
	m.RecordUpstream("create_poll", 30*time.Millisecond, errors.New("boom"))
	m.RecordSubmission("created")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheEvictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamErrors.WithLabelValues("create_poll")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `poll_creator_cache_lookups_total{result="hit"} 1`), body)
	assert.Contains(t, body, `poll_creator_submissions_total{status="created"} 1`)
}

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.NoError(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordValidation(true)
		m.RecordCacheHit()
		m.RecordCacheMiss()
		m.RecordCacheEviction()
		m.RecordUpstream("get_poll", time.Second, nil)
		m.RecordSubmission("failed")
	})
}
