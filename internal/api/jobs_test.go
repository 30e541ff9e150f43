package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerScenarioSync(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1.3/scenarios/2/trigger-sync", r.URL.Path)
		w.Write(jsonResponse(map[string]any{"scenarioId": 2, "items": 14, "status": "ok", "message": "synced"}))
	})

	res, err := client.TriggerScenarioSync(2)
	require.NoError(t, err)
	assert.Equal(t, 14, res.Items)
}

func TestTriggerAggregationBody(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.10/admin/trigger-aggregation", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-03-01T00:00:00Z", body["startTime"])
		assert.Equal(t, "2026-03-02T00:00:00Z", body["endTime"])
		w.Write(jsonResponse(map[string]any{"jobId": "agg-1", "message": "started"}))
	})

	res, err := client.TriggerAggregation(AggregationInput{StartTime: start, EndTime: end})
	require.NoError(t, err)
	assert.Equal(t, "agg-1", res.JobID)
}

func TestTriggerExtractionOmitsNilLimit(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.10/admin/trigger-extraction", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Empty(t, body)
		w.Write(jsonResponse(map[string]any{"jobId": "ext-1", "message": "started"}))
	})

	res, err := client.TriggerExtraction(ExtractionInput{})
	require.NoError(t, err)
	assert.Equal(t, "ext-1", res.JobID)
}

func TestTriggerCompareKBSyncConflict(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.10/admin/trigger-compare-kb-sync", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		w.Write(jsonResponse(map[string]any{"detail": "compare_kb_sync job already running"}))
	})

	_, err := client.TriggerCompareKBSync()
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
	assert.Contains(t, err.Error(), "already running")
}
