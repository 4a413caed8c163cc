package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

const outlineSystemPrompt = "You are a document-structure analyst. " +
	"Given the text of a tribunal decision, list its sections in reading order. " +
	"Return only JSON."

const outlinePrompt = "List every section of this decision, in order of appearance. " +
	"Report each section's heading exactly as it appears in the text, with the " +
	"1-based page number the section starts on and the 1-based page number it ends on (inclusive).\n\n%s"

// outlineSchema constrains the outline response to a flat section list with
// page ranges.
func outlineSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"heading":    map[string]any{"type": "string"},
						"start_page": map[string]any{"type": "integer"},
						"end_page":   map[string]any{"type": "integer"},
					},
					"required": []string{"heading", "start_page", "end_page"},
				},
			},
		},
		"required": []string{"sections"},
	}
}

type outlineResponse struct {
	Sections []struct {
		Heading   string `json:"heading"`
		StartPage int    `json:"start_page"`
		EndPage   int    `json:"end_page"`
	} `json:"sections"`
}

// DocumentOutline asks the model for the decision's sections and their page
// ranges. Sections with a blank heading are dropped; page-range validation
// is left to the caller, which knows the document bounds.
func (c *Client) DocumentOutline(ctx context.Context, pages []document.PageText) ([]document.OutlineSection, error) {
	fullText := document.JoinPages(pages)
	if strings.TrimSpace(fullText) == "" {
		return nil, nil
	}

	result := c.GenerateStructured(ctx, oracle.GenerateRequest{
		Prompt:       strings.Replace(outlinePrompt, "%s", fullText, 1),
		SystemPrompt: outlineSystemPrompt,
		Schema:       outlineSchema(),
	})
	if result.Kind != oracle.KindValid {
		return nil, apperrors.Wrap(result.Err, apperrors.ErrCodeNoChunks, "outline analysis call failed")
	}

	var parsed outlineResponse
	if err := json.Unmarshal(result.Payload, &parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOracleMalformed, "decode outline response")
	}

	sections := make([]document.OutlineSection, 0, len(parsed.Sections))
	for _, s := range parsed.Sections {
		heading := strings.TrimSpace(s.Heading)
		if heading == "" {
			c.logger.Debug("dropping outline section with blank heading",
				logging.Int("start_page", s.StartPage),
				logging.Int("end_page", s.EndPage),
			)
			continue
		}
		sections = append(sections, document.OutlineSection{
			Heading:   heading,
			StartPage: s.StartPage,
			EndPage:   s.EndPage,
		})
	}
	return sections, nil
}
