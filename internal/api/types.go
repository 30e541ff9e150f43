package api

import "time"

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

// --- Auth ---

// LoginRequest is the credential payload for /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User describes the logged-in operator.
type User struct {
	ID         int    `json:"userId"`
	Username   string `json:"username"`
	FullName   string `json:"fullName,omitempty"`
	Role       string `json:"role"`
	ScenarioID int    `json:"scenarioId"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	User        User   `json:"user"`
}

// --- Taxonomy ---

// TreeNode is one node of the nested tree payload.
type TreeNode struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Level    int        `json:"level"`
	ParentID *int       `json:"parentId"`
	Children []TreeNode `json:"children"`
}

// PathSegment is one hop of a root-to-node path.
type PathSegment struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// NodeDetail is a single node with its resolved path.
type NodeDetail struct {
	ID         int           `json:"id"`
	ScopeCode  string        `json:"scopeCode"`
	Level      int           `json:"level"`
	Name       string        `json:"name"`
	ParentID   *int          `json:"parentId"`
	Definition *string       `json:"definition"`
	Path       []PathSegment `json:"path"`
}

// Case is free-text example content owned by a level-3 node.
type Case struct {
	ID      int    `json:"id"`
	NodeID  int    `json:"nodeId"`
	Content string `json:"content"`
}

// CreateNodeInput is the payload for node creation.
type CreateNodeInput struct {
	Scope      string  `json:"scope"`
	ParentID   *int    `json:"parentId"`
	Level      int     `json:"level"`
	Name       string  `json:"name"`
	Definition *string `json:"definition,omitempty"`
}

// UpdateNodeInput is the payload for node edits. Level and parent never change.
type UpdateNodeInput struct {
	Scope      string  `json:"scope"`
	Name       *string `json:"name,omitempty"`
	Definition *string `json:"definition,omitempty"`
}

// CreateCaseInput is the payload for case creation.
type CreateCaseInput struct {
	Scope   string `json:"scope"`
	NodeID  int    `json:"nodeId"`
	Content string `json:"content"`
}

// UpdateCaseInput is the payload for case edits.
type UpdateCaseInput struct {
	Scope   string `json:"scope"`
	Content string `json:"content"`
}

// --- Import ---

// ImportRowError addresses one problem in an uploaded file.
type ImportRowError struct {
	Row      int     `json:"row"`
	Column   string  `json:"column"`
	Message  string  `json:"message"`
	Expected *string `json:"expected,omitempty"`
	Actual   *string `json:"actual,omitempty"`
}

// ImportSummary counts what an import would write.
type ImportSummary struct {
	Categories int `json:"categories"`
	Cases      int `json:"cases"`
}

// ImportResult is returned by both import phases.
type ImportResult struct {
	OK      bool             `json:"ok"`
	Summary *ImportSummary   `json:"summary,omitempty"`
	Errors  []ImportRowError `json:"errors"`
}

// --- Taxonomy review ---

// ReviewPathSegment is one level of a suggested path.
type ReviewPathSegment struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
}

// ReviewCase is one suggested case.
type ReviewCase struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// TaxonomyReviewItem is a machine-suggested taxonomy entry.
type TaxonomyReviewItem struct {
	ID         int                 `json:"id"`
	ScopeCode  string              `json:"scopeCode"`
	Path       []ReviewPathSegment `json:"path"`
	Definition string              `json:"definition"`
	Cases      []ReviewCase        `json:"cases"`
}

// AcceptTaxonomyInput carries accept-time overrides.
type AcceptTaxonomyInput struct {
	Scope      string   `json:"scope"`
	L3Name     string   `json:"l3Name"`
	Definition string   `json:"definition"`
	Cases      []string `json:"cases"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- Pending FAQs ---

// PendingFAQ is a machine-suggested question/answer pair.
type PendingFAQ struct {
	ID                     int     `json:"id"`
	Question               string  `json:"question"`
	Answer                 string  `json:"answer"`
	SourceConversationText *string `json:"source_conversation_text"`
}

// PendingFAQPage is one page of the pending queue.
type PendingFAQPage struct {
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Items    []PendingFAQ `json:"items"`
}

// CreateKnowledgeItemInput accepts a pending FAQ into the knowledge store.
type CreateKnowledgeItemInput struct {
	PendingFAQID int    `json:"pendingFaqId"`
	ScenarioID   int    `json:"scenarioId"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
}

// CreatedKnowledgeItem is returned by a single accept.
type CreatedKnowledgeItem struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

type bulkCreateRequest struct {
	Items []CreateKnowledgeItemInput `json:"items"`
}

type bulkCreateResponse struct {
	CreatedCount int `json:"createdCount"`
}

type bulkDiscardRequest struct {
	PendingFAQIDs []int `json:"pendingFaqIds"`
}

type bulkDiscardResponse struct {
	DiscardedCount int `json:"discardedCount"`
}

// --- Knowledge ---

// Knowledge item states.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// KnowledgeItem is a published question/answer pair.
type KnowledgeItem struct {
	ID        int       `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// KnowledgePage is one page of knowledge items.
type KnowledgePage struct {
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Items    []KnowledgeItem `json:"items"`
}

// KnowledgeQuery filters the knowledge listing.
type KnowledgeQuery struct {
	Status   string
	Page     int
	PageSize int
	Keyword  string
}

// UpdateKnowledgeInput carries only the fields being changed.
type UpdateKnowledgeInput struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// --- Jobs ---

// JobTriggerResponse acknowledges a background job.
type JobTriggerResponse struct {
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// ScenarioSyncResult reports a knowledge push to the downstream KB.
type ScenarioSyncResult struct {
	ScenarioID int    `json:"scenarioId"`
	Items      int    `json:"items"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// AggregationInput bounds the conversation window to aggregate.
type AggregationInput struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// ExtractionInput caps how many conversations an extraction run reads.
type ExtractionInput struct {
	Limit *int `json:"limit,omitempty"`
}
