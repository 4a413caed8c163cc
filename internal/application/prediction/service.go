package prediction

import (
	"context"

	"github.com/turtacn/MarkIP-Intelligence/internal/domain/caselaw"
	"github.com/turtacn/MarkIP-Intelligence/internal/domain/document"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarkIP-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
)

// Embedder produces embedding vectors for goods-and-services terms.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorSearcher finds nearest-neighbour chunks for a query vector.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, query []float32, k int) ([]milvus.Match, error)
}

// ChunkLoader resolves chunk identifiers back to their stored text.
type ChunkLoader interface {
	GetChunksByIDs(ctx context.Context, ids []string) ([]document.Chunk, error)
}

// Options are the service tunables.
type Options struct {
	// Neighbors is how many nearest chunks each G&S term retrieves for
	// few-shot context.
	Neighbors int

	// MaxConcurrent bounds the G&S assessment fan-out during case
	// prediction.
	MaxConcurrent int
}

func (o *Options) withDefaults() {
	if o.Neighbors <= 0 {
		o.Neighbors = 5
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
}

// Service runs similarity assessments and case outcome predictions.
type Service struct {
	oracle   oracle.TextOracle
	embedder Embedder
	search   VectorSearcher
	chunks   ChunkLoader
	opts     Options
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

func NewService(textOracle oracle.TextOracle, embedder Embedder, search VectorSearcher, chunks ChunkLoader, opts Options, metrics *prometheus.AppMetrics, logger logging.Logger) *Service {
	opts.withDefaults()
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &Service{
		oracle:   textOracle,
		embedder: embedder,
		search:   search,
		chunks:   chunks,
		opts:     opts,
		metrics:  metrics,
		logger:   logger.Named("prediction"),
	}
}

// Visual scores two wordmarks visually.
func (s *Service) Visual(applicantMark, opponentMark string) (float64, caselaw.SimilarityDegree) {
	s.metrics.SimilarityCallsTotal.WithLabelValues("visual").Inc()
	return VisualSimilarity(applicantMark, opponentMark)
}

// Aural scores two wordmarks phonetically.
func (s *Service) Aural(applicantMark, opponentMark string) (float64, caselaw.SimilarityDegree) {
	s.metrics.SimilarityCallsTotal.WithLabelValues("aural").Inc()
	return AuralSimilarity(applicantMark, opponentMark)
}
