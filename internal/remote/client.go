// Package remote is the boundary adapter for the external processing
// service that extracts and embeds document content.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"
)

// ErrUnavailable marks a connection-refused transport failure so operators
// can tell an outage apart from a protocol mismatch.
var ErrUnavailable = errors.New("remote: processing service unavailable")

// DomainError means the service answered and reported a failure of its own
// (bad document format, embedding error, ...). Anything else returned from
// Ingest is a transport failure.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string { return e.Reason }

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a client with the given request timeout. Ingestion can
// take minutes on large documents, so the caller should pass something on
// the order of two minutes; exceeding it surfaces as a transport failure.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type ingestReq struct {
	DocumentID string `json:"document_id"`
}

type ingestResp struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	EmbeddingsCount int    `json:"embeddings_count"`
}

// Ingest asks the processing service to ingest one document and returns the
// number of embeddings it produced. The client never retries; retry policy
// belongs to the caller.
func (c *Client) Ingest(ctx context.Context, documentID string) (int, error) {
	var out ingestResp
	if err := c.post(ctx, "/ingest", ingestReq{DocumentID: documentID}, &out); err != nil {
		return 0, err
	}
	if out.Status != "success" {
		msg := out.Message
		if msg == "" {
			msg = "ingestion failed"
		}
		return 0, &DomainError{Reason: msg}
	}
	return out.EmbeddingsCount, nil
}

type qaReq struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids"`
}

type QAResult struct {
	Question          string   `json:"question"`
	Answer            string   `json:"answer"`
	RelevantDocuments []string `json:"relevant_documents"`
	Confidence        float64  `json:"confidence"`
}

func (c *Client) AskQuestion(ctx context.Context, question string, documentIDs []string) (*QAResult, error) {
	if documentIDs == nil {
		documentIDs = []string{}
	}
	var out QAResult
	if err := c.post(ctx, "/qa", qaReq{Question: question, DocumentIDs: documentIDs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return wrapTransport(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote: health status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		msg := detail.Detail
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return &DomainError{Reason: msg}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func wrapTransport(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
