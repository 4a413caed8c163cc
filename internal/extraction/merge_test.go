package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

func record(m map[string]any) Candidate { return Candidate{Record: m} }

func TestDeepMerge_NonEmptyNeverOverwrittenByEmpty(t *testing.T) {
	merged, err := DeepMergeByPresence([]Candidate{
		record(map[string]any{"name": "Acme"}),
		record(map[string]any{"name": ""}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", merged["name"])
}

func TestDeepMerge_EmptyAccumulatorAcceptsAnything(t *testing.T) {
	merged, err := DeepMergeByPresence([]Candidate{
		record(map[string]any{"name": ""}),
		record(map[string]any{"name": "Acme"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", merged["name"])
}

func TestDeepMerge_NullNeverOverwrites(t *testing.T) {
	merged, err := DeepMergeByPresence([]Candidate{
		record(map[string]any{"outcome": "successful"}),
		record(map[string]any{"outcome": nil}),
	})
	require.NoError(t, err)
	assert.Equal(t, "successful", merged["outcome"])
}

func TestDeepMerge_NestedMappingsRecurse(t *testing.T) {
	merged, err := DeepMergeByPresence([]Candidate{
		record(map[string]any{"mark_comparison": map[string]any{"visual_similarity": "high_degree"}}),
		record(map[string]any{"mark_comparison": map[string]any{"aural_similarity": "medium_degree"}}),
	})
	require.NoError(t, err)
	mc := merged["mark_comparison"].(map[string]any)
	assert.Equal(t, "high_degree", mc["visual_similarity"])
	assert.Equal(t, "medium_degree", mc["aural_similarity"])
}

func TestDeepMerge_ListsUnionWithoutDuplicates(t *testing.T) {
	merged, err := DeepMergeByPresence([]Candidate{
		record(map[string]any{"grounds": []any{"5(2)(b)"}}),
		record(map[string]any{"grounds": []any{"5(2)(b)", "5(3)"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"5(2)(b)", "5(3)"}, merged["grounds"])
}

func TestDeepMerge_ListOfMappingsDedupedStructurally(t *testing.T) {
	mark := map[string]any{"mark": "LUMINEX", "mark_type": "WORD"}
	other := map[string]any{"mark": "LUMINA", "mark_type": "WORD"}
	merged, err := DeepMergeByPresence([]Candidate{
		record(map[string]any{"applicant_marks": []any{mark}}),
		record(map[string]any{"applicant_marks": []any{map[string]any{"mark": "LUMINEX", "mark_type": "WORD"}, other}}),
	})
	require.NoError(t, err)
	marks := merged["applicant_marks"].([]any)
	require.Len(t, marks, 2)
	assert.Equal(t, "LUMINEX", marks[0].(map[string]any)["mark"])
	assert.Equal(t, "LUMINA", marks[1].(map[string]any)["mark"])
}

func TestDeepMerge_ErrorCandidatesSkipped(t *testing.T) {
	merged, err := DeepMergeByPresence([]Candidate{
		record(map[string]any{"name": "Acme"}),
		{Err: errors.New("provider exploded")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", merged["name"])
}

func TestDeepMerge_NoUsableCandidates(t *testing.T) {
	_, err := DeepMergeByPresence([]Candidate{{Err: errors.New("boom")}})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoCandidates))

	_, err = DeepMergeByPresence(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoCandidates))
}

func TestDeepMerge_FalseDoesNotOverwriteTrue(t *testing.T) {
	merged, err := DeepMergeByPresence([]Candidate{
		record(map[string]any{"likelihood_of_confusion": true}),
		record(map[string]any{"likelihood_of_confusion": false}),
	})
	require.NoError(t, err)
	assert.Equal(t, true, merged["likelihood_of_confusion"])
}
