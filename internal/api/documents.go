package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/url"
	"time"
)

// Document is one knowledge base entry.
type Document struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Status        string           `json:"status"`
	UploadedBy    string           `json:"uploaded_by"`
	UploadedAt    time.Time        `json:"uploaded_at"`
	FileSize      int64            `json:"file_size"`
	MimeType      string           `json:"mime_type"`
	ExtractedText string           `json:"extracted_text,omitempty"`
	Summary       *DocumentSummary `json:"summary,omitempty"`
}

// DocumentSummary is the server-generated digest of a document.
type DocumentSummary struct {
	ShortSummary string   `json:"short_summary,omitempty"`
	LongSummary  string   `json:"long_summary,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// DocumentUpload acknowledges an upload; text extraction and
// summarization continue server-side.
type DocumentUpload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`
}

// SearchResult is one knowledge base hit.
type SearchResult struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Summary      string    `json:"summary,omitempty"`
	Keywords     []string  `json:"keywords"`
	UploadedBy   string    `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
	MatchContext string    `json:"match_context,omitempty"`
}

// SearchResponse is the full search reply.
type SearchResponse struct {
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

// UploadDocument sends raw file bytes to the knowledge base.
func (c *Client) UploadDocument(ctx context.Context, filename string, file io.Reader) (*DocumentUpload, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, validationError("build multipart body: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, validationError("read upload: %v", err)
	}
	if err := writer.Close(); err != nil {
		return nil, validationError("finish multipart body: %v", err)
	}

	resp, err := c.Post(ctx, "/api/documents/upload",
		Multipart{ContentType: writer.FormDataContentType(), Body: &buf})
	if err != nil {
		return nil, err
	}

	var out DocumentUpload
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments lists knowledge base entries.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var out []Document
	if err := c.getJSON(ctx, "/api/documents/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchDocuments runs a server-side knowledge base search.
func (c *Client) SearchDocuments(ctx context.Context, query string) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.getJSON(ctx, "/api/documents/search", &out, WithQuery("q", query)); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocument fetches one entry with its extracted text and summary.
// Document detail lives under the /summary subresource.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var out Document
	if err := c.getJSON(ctx, "/api/documents/"+url.PathEscape(id)+"/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes an entry.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, "/api/documents/"+url.PathEscape(id))
	return err
}
