package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string identifier for a specific failure category.
// Codes are grouped by module prefix so that dashboards and log queries can
// aggregate per subsystem.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeExternalService    ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
)

// Document module error codes (source PDF retrieval and text extraction).
const (
	ErrCodeDocumentNotFound     ErrorCode = "DOC_001"
	ErrCodeDocumentFetchFailed  ErrorCode = "DOC_002"
	ErrCodeTextExtractionFailed ErrorCode = "DOC_003"
)

// Chunking module error codes.
const (
	ErrCodeNoHeadings       ErrorCode = "CHUNK_001"
	ErrCodeNoChunks         ErrorCode = "CHUNK_002"
	ErrCodeInvalidPageRange ErrorCode = "CHUNK_003"
)

// Oracle (extraction/embedding service) error codes.
const (
	ErrCodeOracleTransient    ErrorCode = "ORACLE_001"
	ErrCodeOracleMalformed    ErrorCode = "ORACLE_002"
	ErrCodeOracleRejected     ErrorCode = "ORACLE_003"
	ErrCodeOracleUpload       ErrorCode = "ORACLE_004"
	ErrCodeOracleBatchFailed  ErrorCode = "ORACLE_005"
	ErrCodeEmbeddingFailed    ErrorCode = "ORACLE_006"
	ErrCodeOracleUnconfigured ErrorCode = "ORACLE_007"
)

// Extraction engine error codes.
const (
	ErrCodeNoCandidates    ErrorCode = "EXTRACT_001"
	ErrCodeAllPassesFailed ErrorCode = "EXTRACT_002"
	ErrCodeSchedulerFailed ErrorCode = "EXTRACT_003"
	ErrCodeReconcileFailed ErrorCode = "EXTRACT_004"
)

// Case record error codes.
const (
	ErrCodeCaseValidation ErrorCode = "CASE_001"
	ErrCodeCaseNotFound   ErrorCode = "CASE_002"
	ErrCodeCaseExists     ErrorCode = "CASE_003"
)

// Prediction / similarity error codes.
const (
	ErrCodeSimilarityFailed ErrorCode = "PRED_001"
	ErrCodePredictionFailed ErrorCode = "PRED_002"
)

// Vector index error codes.
const (
	ErrCodeVectorUpsertFailed ErrorCode = "VEC_001"
	ErrCodeVectorQueryFailed  ErrorCode = "VEC_002"
)

// Short aliases used pervasively at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeValidation   = ErrCodeValidation
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// transientCodes are the oracle-level failure categories that a bounded
// retry loop may attempt again. Schema rejection is deliberately absent.
var transientCodes = map[ErrorCode]struct{}{
	ErrCodeOracleTransient: {},
	ErrCodeOracleMalformed: {},
	ErrCodeTimeout:         {},
}

// IsTransientCode reports whether code identifies a failure that is safe to
// retry with backoff.
func IsTransientCode(code ErrorCode) bool {
	_, ok := transientCodes[code]
	return ok
}

// HTTPStatusForCode maps an ErrorCode to the HTTP status the API layer should
// return. Unknown codes map to 500 so that unexpected conditions never leak
// as client errors.
func HTTPStatusForCode(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeDocumentNotFound, ErrCodeCaseNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeCaseExists:
		return http.StatusConflict
	case ErrCodeValidation, ErrCodeCaseValidation:
		return http.StatusUnprocessableEntity
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ModuleForCode returns the module prefix of a code ("ORACLE" for
// "ORACLE_003"). Used as a metric label.
func ModuleForCode(code ErrorCode) string {
	s := code.String()
	if i := strings.LastIndex(s, "_"); i > 0 {
		return s[:i]
	}
	return s
}
