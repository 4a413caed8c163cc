package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/turtacn/MarkIP-Intelligence/internal/config"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

const batchBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// BatchClient runs extraction passes as one remote batch job instead of
// individual calls. The batch endpoints are not covered by the SDK, so
// this speaks the REST API directly.
type BatchClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	model        string
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       logging.Logger
}

func NewBatchClient(oracleCfg config.OracleConfig, extractCfg config.ExtractionConfig, logger logging.Logger) (*BatchClient, error) {
	if oracleCfg.APIKey == "" {
		return nil, apperrors.New(apperrors.ErrCodeOracleUnconfigured, "oracle api key is not configured")
	}
	return &BatchClient{
		httpClient:   &http.Client{Timeout: oracleCfg.RequestTimeout},
		baseURL:      batchBaseURL,
		apiKey:       oracleCfg.APIKey,
		model:        oracleCfg.Model,
		pollInterval: extractCfg.BatchPollInterval,
		pollTimeout:  extractCfg.BatchPollTimeout,
		logger:       logger.Named("gemini.batch"),
	}, nil
}

type batchPart struct {
	Text     string         `json:"text,omitempty"`
	FileData *batchFileData `json:"file_data,omitempty"`
}

type batchFileData struct {
	FileURI string `json:"file_uri"`
}

type batchContent struct {
	Role  string      `json:"role,omitempty"`
	Parts []batchPart `json:"parts"`
}

type batchGenerationConfig struct {
	ResponseMIMEType string         `json:"response_mime_type"`
	ResponseSchema   map[string]any `json:"response_schema,omitempty"`
}

type batchGenerateRequest struct {
	Contents          []batchContent         `json:"contents"`
	SystemInstruction *batchContent          `json:"system_instruction,omitempty"`
	GenerationConfig  *batchGenerationConfig `json:"generation_config,omitempty"`
}

type batchInlinedRequest struct {
	Request  batchGenerateRequest `json:"request"`
	Metadata map[string]string    `json:"metadata"`
}

type batchCreateRequest struct {
	Batch struct {
		DisplayName string `json:"display_name"`
		InputConfig struct {
			Requests struct {
				Requests []batchInlinedRequest `json:"requests"`
			} `json:"requests"`
		} `json:"input_config"`
	} `json:"batch"`
}

type batchOperation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response struct {
		InlinedResponses struct {
			InlinedResponses []batchInlinedResponse `json:"inlinedResponses"`
		} `json:"inlinedResponses"`
	} `json:"response"`
}

type batchInlinedResponse struct {
	Metadata map[string]string `json:"metadata"`
	Response *struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	} `json:"response"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RunBatch submits all items as one job and polls it to completion. Item
// keys travel in per-request metadata and come back attached to each
// inlined response.
func (b *BatchClient) RunBatch(ctx context.Context, items []oracle.BatchItem) (map[string]oracle.Result, error) {
	if len(items) == 0 {
		return map[string]oracle.Result{}, nil
	}

	payload, err := b.buildCreateRequest(items)
	if err != nil {
		return nil, err
	}

	op, err := b.createJob(ctx, payload)
	if err != nil {
		return nil, err
	}
	b.logger.Info("batch job submitted",
		logging.String("job", op.Name),
		logging.Int("items", len(items)))

	op, err = b.pollJob(ctx, op)
	if err != nil {
		return nil, err
	}
	return b.collectResults(op), nil
}

func (b *BatchClient) buildCreateRequest(items []oracle.BatchItem) (*batchCreateRequest, error) {
	req := &batchCreateRequest{}
	req.Batch.DisplayName = fmt.Sprintf("extraction-%d", time.Now().Unix())
	for _, item := range items {
		gr := batchGenerateRequest{
			Contents: []batchContent{{Role: "user", Parts: requestParts(item.Request)}},
			GenerationConfig: &batchGenerationConfig{
				ResponseMIMEType: "application/json",
			},
		}
		if item.Request.Schema != nil {
			schema, err := toGenaiSchema(item.Request.Schema)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "convert response schema")
			}
			gr.GenerationConfig.ResponseSchema = restSchema(schema)
		}
		if item.Request.SystemPrompt != "" {
			gr.SystemInstruction = &batchContent{Parts: []batchPart{{Text: item.Request.SystemPrompt}}}
		}
		req.Batch.InputConfig.Requests.Requests = append(req.Batch.InputConfig.Requests.Requests,
			batchInlinedRequest{Request: gr, Metadata: map[string]string{"key": item.Key}})
	}
	return req, nil
}

func requestParts(req oracle.GenerateRequest) []batchPart {
	parts := make([]batchPart, 0, 2)
	if req.DocumentRef != "" {
		parts = append(parts, batchPart{FileData: &batchFileData{FileURI: req.DocumentRef}})
	}
	parts = append(parts, batchPart{Text: req.Prompt})
	return parts
}

func (b *BatchClient) createJob(ctx context.Context, payload *batchCreateRequest) (*batchOperation, error) {
	url := fmt.Sprintf("%s/models/%s:batchGenerateContent", b.baseURL, b.model)
	op := &batchOperation{}
	if err := b.doJSON(ctx, http.MethodPost, url, payload, op); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleBatchFailed, "create batch job")
	}
	return op, nil
}

func (b *BatchClient) pollJob(ctx context.Context, op *batchOperation) (*batchOperation, error) {
	deadline := time.Now().Add(b.pollTimeout)
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for !op.Done {
		if time.Now().After(deadline) {
			return nil, apperrors.Newf(apperrors.ErrCodeOracleBatchFailed,
				"batch job %s not done after %s", op.Name, b.pollTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout, "batch poll interrupted")
		case <-ticker.C:
		}

		url := fmt.Sprintf("%s/%s", b.baseURL, op.Name)
		next := &batchOperation{}
		if err := b.doJSON(ctx, http.MethodGet, url, nil, next); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleBatchFailed, "poll batch job")
		}
		next.Name = op.Name
		op = next
	}
	if op.Error != nil {
		return nil, apperrors.Newf(apperrors.ErrCodeOracleBatchFailed,
			"batch job failed: %s (code %d)", op.Error.Message, op.Error.Code)
	}
	return op, nil
}

func (b *BatchClient) collectResults(op *batchOperation) map[string]oracle.Result {
	results := make(map[string]oracle.Result, len(op.Response.InlinedResponses.InlinedResponses))
	for _, item := range op.Response.InlinedResponses.InlinedResponses {
		key := item.Metadata["key"]
		if key == "" {
			b.logger.Warn("batch response item without key metadata, dropped")
			continue
		}
		results[key] = inlinedResult(item)
	}
	return results
}

func inlinedResult(item batchInlinedResponse) oracle.Result {
	if item.Error != nil {
		return oracle.ProviderFailure(apperrors.Newf(apperrors.ErrCodeOracleRejected,
			"batch item failed: %s (code %d)", item.Error.Message, item.Error.Code))
	}
	if item.Response == nil || len(item.Response.Candidates) == 0 {
		return oracle.Malformed(apperrors.New(apperrors.ErrCodeOracleMalformed, "batch item has no candidates"))
	}
	var buf bytes.Buffer
	for _, part := range item.Response.Candidates[0].Content.Parts {
		buf.WriteString(part.Text)
	}
	if buf.Len() == 0 || !json.Valid(buf.Bytes()) {
		return oracle.Malformed(apperrors.New(apperrors.ErrCodeOracleMalformed, "batch item payload is not valid JSON"))
	}
	return oracle.Valid(buf.Bytes())
}

func (b *BatchClient) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", b.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return json.Unmarshal(data, out)
}

// restSchema renders a schema in the REST API's OpenAPI dialect, which
// uses upper-case type names.
func restSchema(s *genai.Schema) map[string]any {
	m := map[string]any{"type": restType(s.Type)}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.Nullable {
		m["nullable"] = true
	}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}
	if s.Items != nil {
		m["items"] = restSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = restSchema(prop)
		}
		m["properties"] = props
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return m
}

func restType(t genai.Type) string {
	switch t {
	case genai.TypeObject:
		return "OBJECT"
	case genai.TypeArray:
		return "ARRAY"
	case genai.TypeString:
		return "STRING"
	case genai.TypeInteger:
		return "INTEGER"
	case genai.TypeNumber:
		return "NUMBER"
	case genai.TypeBoolean:
		return "BOOLEAN"
	default:
		return "TYPE_UNSPECIFIED"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
