package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarkIP-Intelligence/internal/application/prediction"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSimilarityService struct {
	conceptual *prediction.ConceptualResult
	marks      *prediction.MarkSimilarity
	gs         *prediction.GsSimilarity
	err        error
}

func (f *fakeSimilarityService) Visual(string, string) (float64, caselaw.SimilarityDegree) {
	return 0.875, caselaw.DegreeHigh
}

func (f *fakeSimilarityService) Aural(string, string) (float64, caselaw.SimilarityDegree) {
	return 1.0, caselaw.DegreeIdentical
}

func (f *fakeSimilarityService) Conceptual(context.Context, string, string) (*prediction.ConceptualResult, error) {
	return f.conceptual, f.err
}

func (f *fakeSimilarityService) Marks(context.Context, string, string) (*prediction.MarkSimilarity, error) {
	return f.marks, f.err
}

func (f *fakeSimilarityService) GoodsServices(context.Context, prediction.GsTerm, prediction.GsTerm) (*prediction.GsSimilarity, error) {
	return f.gs, f.err
}

func similarityRouter(svc SimilarityService) *gin.Engine {
	r := gin.New()
	h := NewSimilarityHandler(svc)
	r.POST("/similarity/visual", h.Visual)
	r.POST("/similarity/aural", h.Aural)
	r.POST("/similarity/conceptual", h.Conceptual)
	r.POST("/similarity/marks", h.Marks)
	r.POST("/similarity/goods-services", h.GoodsServices)
	return r
}

func postJSON(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestVisualEndpoint(t *testing.T) {
	r := similarityRouter(&fakeSimilarityService{})

	rec := postJSON(t, r, "/similarity/visual", `{"applicant_mark":"GLOW","opponent_mark":"GLO"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"score":0.875,"degree":"high_degree"}`, rec.Body.String())
}

func TestVisualEndpointRequiresBothMarks(t *testing.T) {
	r := similarityRouter(&fakeSimilarityService{})

	rec := postJSON(t, r, "/similarity/visual", `{"applicant_mark":"GLOW"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "opponent_mark")
}

func TestVisualEndpointRejectsMalformedBody(t *testing.T) {
	r := similarityRouter(&fakeSimilarityService{})

	rec := postJSON(t, r, "/similarity/visual", `{"applicant_mark":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConceptualEndpoint(t *testing.T) {
	r := similarityRouter(&fakeSimilarityService{
		conceptual: &prediction.ConceptualResult{Score: 0.5, Degree: caselaw.ConceptMedium, Reasoning: "shared concept"},
	})

	rec := postJSON(t, r, "/similarity/conceptual", `{"applicant_mark":"LION","opponent_mark":"TIGER"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"medium_degree"`)
	assert.Contains(t, rec.Body.String(), "shared concept")
}

func TestConceptualEndpointMapsOracleFailureTo500(t *testing.T) {
	r := similarityRouter(&fakeSimilarityService{
		err: apperrors.New(apperrors.ErrCodeSimilarityFailed, "oracle unreachable"),
	})

	rec := postJSON(t, r, "/similarity/conceptual", `{"applicant_mark":"LION","opponent_mark":"TIGER"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// internal failures are masked
	assert.NotContains(t, rec.Body.String(), "oracle unreachable")
}

func TestGoodsServicesEndpoint(t *testing.T) {
	confusion := caselaw.ConfusionDirect
	r := similarityRouter(&fakeSimilarityService{
		gs: &prediction.GsSimilarity{
			ApplicantTerm:         "clothing",
			OpponentTerm:          "headgear",
			Similarity:            caselaw.DegreeHigh,
			SimilarityScore:       0.8,
			LikelihoodOfConfusion: true,
			ConfusionType:         &confusion,
			Reasoning:             "overlap",
		},
	})

	rec := postJSON(t, r, "/similarity/goods-services",
		`{"applicant_term":{"term":"clothing","class":25},"opponent_term":{"term":"headgear","class":25}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"confusion_type":"direct"`)
}

func TestGoodsServicesEndpointPropagatesBadRequest(t *testing.T) {
	r := similarityRouter(&fakeSimilarityService{
		err: apperrors.New(apperrors.ErrCodeBadRequest, "both goods/services terms are required"),
	})

	rec := postJSON(t, r, "/similarity/goods-services", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")
}
