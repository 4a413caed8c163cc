package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

func TestMajorityVote_MajorityWins(t *testing.T) {
	result, err := MajorityVote([]string{"x"}, []Candidate{
		record(map[string]any{"x": "A"}),
		record(map[string]any{"x": "A"}),
		record(map[string]any{"x": "B"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "A", result["x"])
}

func TestMajorityVote_TieBreaksFirstSeen(t *testing.T) {
	result, err := MajorityVote([]string{"x"}, []Candidate{
		record(map[string]any{"x": "A"}),
		record(map[string]any{"x": "B"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "A", result["x"])
}

func TestMajorityVote_CompositeValuesCountByStructure(t *testing.T) {
	result, err := MajorityVote([]string{"mark_comparison"}, []Candidate{
		record(map[string]any{"mark_comparison": map[string]any{"visual_similarity": "high_degree", "aural_similarity": "high_degree"}}),
		// same structure, different construction order
		record(map[string]any{"mark_comparison": map[string]any{"aural_similarity": "high_degree", "visual_similarity": "high_degree"}}),
		record(map[string]any{"mark_comparison": map[string]any{"visual_similarity": "low_degree", "aural_similarity": "low_degree"}}),
	})
	require.NoError(t, err)
	mc := result["mark_comparison"].(map[string]any)
	assert.Equal(t, "high_degree", mc["visual_similarity"])
}

func TestMajorityVote_ListValuesVoteAsWholeValues(t *testing.T) {
	result, err := MajorityVote([]string{"grounds"}, []Candidate{
		record(map[string]any{"grounds": []any{"5(2)(b)"}}),
		record(map[string]any{"grounds": []any{"5(2)(b)", "5(3)"}}),
		record(map[string]any{"grounds": []any{"5(2)(b)"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"5(2)(b)"}, result["grounds"])
}

func TestMajorityVote_NullsNotCounted(t *testing.T) {
	result, err := MajorityVote([]string{"outcome"}, []Candidate{
		record(map[string]any{"outcome": nil}),
		record(map[string]any{"outcome": "successful"}),
		record(map[string]any{"outcome": nil}),
	})
	require.NoError(t, err)
	assert.Equal(t, "successful", result["outcome"])
}

func TestMajorityVote_AbsentFieldStaysAbsent(t *testing.T) {
	result, err := MajorityVote([]string{"outcome", "other"}, []Candidate{
		record(map[string]any{"outcome": "successful"}),
	})
	require.NoError(t, err)
	_, present := result["other"]
	assert.False(t, present)
}

func TestMajorityVote_ErrorCandidatesExcluded(t *testing.T) {
	result, err := MajorityVote([]string{"x"}, []Candidate{
		{Err: errors.New("boom")},
		record(map[string]any{"x": "B"}),
		{Err: errors.New("boom again")},
	})
	require.NoError(t, err)
	assert.Equal(t, "B", result["x"])
}

func TestMajorityVote_NoUsableCandidates(t *testing.T) {
	_, err := MajorityVote([]string{"x"}, []Candidate{{Err: errors.New("boom")}})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoCandidates))
}
