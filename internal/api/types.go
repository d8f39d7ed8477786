// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package api

// =============================================================================
// REQUEST TYPES
// =============================================================================

// QueryRequest is the request body for POST /api/query.
type QueryRequest struct {
	Question string `json:"question"` // 1-1000 characters, enforced server-side
	Stream   bool   `json:"stream"`   // Enable SSE streaming
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// Document is a retrieved source cited by an answer.
type Document struct {
	RecipeName     string         `json:"recipe_name"`
	Content        string         `json:"content"`
	SearchType     string         `json:"search_type"`
	RelevanceScore float64        `json:"relevance_score"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// QueryResponse is the non-streaming result of POST /api/query.
type QueryResponse struct {
	Answer                string     `json:"answer"`
	Strategy              string     `json:"strategy"`
	Complexity            float64    `json:"complexity"`
	RelationshipIntensity float64    `json:"relationship_intensity"`
	Documents             []Document `json:"documents"`
	ProcessingTime        float64    `json:"processing_time"` // Seconds
}

// KnowledgeBaseStats describes the indexed corpus.
type KnowledgeBaseStats struct {
	TotalRecipes      int      `json:"total_recipes"`
	TotalIngredients  int      `json:"total_ingredients"`
	TotalCookingSteps int      `json:"total_cooking_steps"`
	TotalDocuments    int      `json:"total_documents"`
	TotalChunks       int      `json:"total_chunks"`
	Categories        []string `json:"categories"`
}

// RoutingStats describes how queries were routed between search strategies.
type RoutingStats struct {
	TotalQueries     int     `json:"total_queries"`
	TraditionalCount int     `json:"traditional_count"`
	TraditionalRatio float64 `json:"traditional_ratio"`
	GraphRAGCount    int     `json:"graph_rag_count"`
	GraphRAGRatio    float64 `json:"graph_rag_ratio"`
	CombinedCount    int     `json:"combined_count"`
	CombinedRatio    float64 `json:"combined_ratio"`
}

// MilvusStats describes the vector collection.
type MilvusStats struct {
	RowCount int `json:"row_count"`
}

// StatsResponse is the result of GET /api/stats. Read-only.
type StatsResponse struct {
	KnowledgeBase KnowledgeBaseStats `json:"knowledge_base"`
	Routing       RoutingStats       `json:"routing"`
	Milvus        MilvusStats        `json:"milvus"`
}

// HealthResponse is the result of GET /api/health. Read-only.
type HealthResponse struct {
	Status      string `json:"status"`
	SystemReady bool   `json:"system_ready"`
	Message     string `json:"message"`
}

// backendError is the FastAPI error envelope on non-2xx responses.
type backendError struct {
	Detail string `json:"detail"`
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventType discriminates decoded stream events.
type EventType int

const (
	EventContent EventType = iota
	EventMetadata
	EventDocuments
	EventDone
	EventError
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventContent:
		return "content"
	case EventMetadata:
		return "metadata"
	case EventDocuments:
		return "documents"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamEvent is a single decoded record from the streaming query protocol.
// Events are ephemeral: they exist only between decode and consumption.
type StreamEvent struct {
	Type EventType

	// Content holds the text delta for EventContent.
	Content string

	// Metadata holds whatever routing/complexity fields the backend sent
	// for EventMetadata (strategy, complexity, relationship_intensity, ...).
	Metadata map[string]any

	// Documents holds the cited sources for EventDocuments.
	Documents []Document

	// Message holds the backend's failure description for EventError.
	Message string
}
