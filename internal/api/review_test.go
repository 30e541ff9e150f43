package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPendingFAQs(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.4/pending-faqs", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "card", r.URL.Query().Get("keyword"))
		w.Write(jsonResponse(map[string]any{
			"total": 3, "page": 1, "pageSize": 100,
			"items": []any{
				map[string]any{"id": 7, "question": "A?", "answer": "B", "source_conversation_text": "user: A?"},
			},
		}))
	})

	page, err := client.ListPendingFAQs(1, 100, "card")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "user: A?", *page.Items[0].SourceConversationText)
}

func TestAcceptPendingFAQ(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1.4/knowledge-items", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(7), body["pendingFaqId"])
		assert.Equal(t, float64(1), body["scenarioId"])
		assert.Equal(t, "A?", body["question"])
		assert.Equal(t, "B", body["answer"])

		w.WriteHeader(http.StatusCreated)
		w.Write(jsonResponse(map[string]any{"id": 30, "status": "active"}))
	})

	item, err := client.AcceptPendingFAQ(CreateKnowledgeItemInput{PendingFAQID: 7, ScenarioID: 1, Question: "A?", Answer: "B"})
	require.NoError(t, err)
	assert.Equal(t, 30, item.ID)
}

func TestDiscardPendingFAQ(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1.4/pending-faqs/7", r.URL.Path)
		w.Write(jsonResponse(map[string]any{"message": "discarded"}))
	})

	require.NoError(t, client.DiscardPendingFAQ(7))
}

func TestBulkCreateKnowledgeItems(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.8/knowledge-items/bulk-create", r.URL.Path)
		var body struct {
			Items []CreateKnowledgeItemInput `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Items, 2)
		w.Write(jsonResponse(map[string]any{"createdCount": 2}))
	})

	n, err := client.BulkCreateKnowledgeItems([]CreateKnowledgeItemInput{
		{PendingFAQID: 1, ScenarioID: 1, Question: "q1", Answer: "a1"},
		{PendingFAQID: 2, ScenarioID: 1, Question: "q2", Answer: "a2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBulkDiscardPendingFAQs(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.8/pending-faqs/bulk-discard", r.URL.Path)
		var body map[string][]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []int{4, 5, 6}, body["pendingFaqIds"])
		w.Write(jsonResponse(map[string]any{"discardedCount": 3}))
	})

	n, err := client.BulkDiscardPendingFAQs([]int{4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListPendingTaxonomy(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.14/kb-taxonomy-review/pending", r.URL.Path)
		assert.Equal(t, "water", r.URL.Query().Get("scope"))
		w.Write(jsonResponse(map[string]any{"items": []any{
			map[string]any{
				"id": 3, "scopeCode": "water", "definition": "d",
				"path":  []any{map[string]any{"level": 1, "name": "a"}, map[string]any{"level": 2, "name": "b"}, map[string]any{"level": 3, "name": "c"}},
				"cases": []any{map[string]any{"id": 1, "content": "x"}},
			},
		}}))
	})

	items, err := client.ListPendingTaxonomy("water")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].Path[2].Name)
}

func TestAcceptAndDiscardTaxonomyItem(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/api/v1.14/kb-taxonomy-review/items/3/accept":
			var body AcceptTaxonomyInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "c", body.L3Name)
			assert.Equal(t, []string{"x"}, body.Cases)
			w.Write(jsonResponse(map[string]any{"message": "accepted"}))
		case "/api/v1.14/kb-taxonomy-review/items/4/discard":
			assert.Equal(t, "water", r.URL.Query().Get("scope"))
			w.Write(jsonResponse(map[string]any{"message": "discarded"}))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	res, err := client.AcceptTaxonomyItem(3, AcceptTaxonomyInput{Scope: "water", L3Name: "c", Definition: "d", Cases: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "accepted", res.Message)

	res, err = client.DiscardTaxonomyItem("water", 4)
	require.NoError(t, err)
	assert.Equal(t, "discarded", res.Message)
}
