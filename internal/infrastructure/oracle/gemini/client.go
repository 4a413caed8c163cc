// Package gemini implements the extraction oracle contract against the
// Gemini API: schema-constrained generation, document upload, embeddings
// and the remote batch variant.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/turtacn/MarkIP-Intelligence/internal/config"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// Client is the process-wide Gemini connection. It is safe for concurrent
// use across fan-out workers; per-call state lives in the model handle
// each call constructs.
type Client struct {
	client *genai.Client
	cfg    config.OracleConfig
	logger logging.Logger
}

func NewClient(ctx context.Context, cfg config.OracleConfig, logger logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.ErrCodeOracleUnconfigured, "oracle api key is not configured")
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExternalService, "create gemini client")
	}
	return &Client{client: gc, cfg: cfg, logger: logger.Named("gemini")}, nil
}

func (c *Client) Close() error { return c.client.Close() }

// GenerateStructured issues one schema-constrained generation call. The
// oracle's schema enforcement is best effort, so the payload is checked
// for JSON validity here; semantic validation stays with the caller.
func (c *Client) GenerateStructured(ctx context.Context, req oracle.GenerateRequest) oracle.Result {
	model := c.client.GenerativeModel(c.cfg.Model)
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		schema, err := toGenaiSchema(req.Schema)
		if err != nil {
			return oracle.ProviderFailure(apperrors.Wrap(err, apperrors.ErrCodeInternal, "convert response schema"))
		}
		model.ResponseSchema = schema
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}

	parts := make([]genai.Part, 0, 2)
	if req.DocumentRef != "" {
		parts = append(parts, genai.FileData{URI: req.DocumentRef})
	}
	parts = append(parts, genai.Text(req.Prompt))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return oracle.ProviderFailure(classifyError(err))
	}

	text, err := responseText(resp)
	if err != nil {
		return oracle.Malformed(err)
	}
	if !json.Valid([]byte(text)) {
		return oracle.Malformed(apperrors.New(apperrors.ErrCodeOracleMalformed, "response is not valid JSON"))
	}
	return oracle.Valid([]byte(text))
}

// Upload pushes the source document to the oracle's file store so prompts
// can reference it by URI.
func (c *Client) Upload(ctx context.Context, name string, data []byte, mimeType string) (oracle.DocumentHandle, error) {
	file, err := c.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: name,
		MIMEType:    mimeType,
	})
	if err != nil {
		return oracle.DocumentHandle{}, apperrors.Wrap(err, apperrors.ErrCodeOracleUpload, "upload document")
	}
	c.logger.Debug("document uploaded", logging.String("name", file.Name))
	return oracle.DocumentHandle{Ref: file.URI, Name: file.Name}, nil
}

// Delete removes an uploaded document. Callers run this in a guaranteed
// cleanup step; a failure here is logged, never masks the pipeline result.
func (c *Client) Delete(ctx context.Context, handle oracle.DocumentHandle) error {
	if handle.Name == "" {
		return nil
	}
	if err := c.client.DeleteFile(ctx, handle.Name); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeOracleUpload, "delete uploaded document")
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperrors.New(apperrors.ErrCodeOracleMalformed, "response contains no candidates")
	}
	var b bytes.Buffer
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", apperrors.New(apperrors.ErrCodeOracleMalformed, "response contains no text parts")
	}
	return b.String(), nil
}

// classifyError maps provider errors onto the retry taxonomy: rate limits
// and server-side failures are transient, everything else is a rejection.
func classifyError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 503, 504:
			return apperrors.Wrap(err, apperrors.ErrCodeOracleTransient, "transient provider error")
		default:
			return apperrors.Wrap(err, apperrors.ErrCodeOracleRejected, "provider rejected request")
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrCodeOracleTransient, "provider call timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeOracleTransient, "provider call failed")
}
