package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recommendParams struct {
	Title     string   `json:"title" validate:"notblank,max=300"`
	TopK      int      `json:"top_k" validate:"min=1,max=100"`
	MinRating *float64 `json:"min_rating" validate:"omitempty,gte=0,lte=10"`
	Format    string   `json:"format,omitempty" validate:"omitempty,oneof=json table"`
}

func ptrF(v float64) *float64 { return &v }

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.NoError(t, ValidateStruct(&recommendParams{Title: "Avatar", TopK: 10}))
	assert.NoError(t, ValidateStruct(&recommendParams{Title: "Avatar", TopK: 1, MinRating: ptrF(0)}))
}

func TestValidateStruct_Messages(t *testing.T) {
	tests := []struct {
		name  string
		input recommendParams
		field string
		msg   string
	}{
		{"blank title", recommendParams{Title: "   ", TopK: 5}, "title", "title must not be blank"},
		{"top_k too small", recommendParams{Title: "x", TopK: 0}, "top_k", "top_k must be at least 1"},
		{"top_k too large", recommendParams{Title: "x", TopK: 101}, "top_k", "top_k must be at most 100"},
		{"rating above 10", recommendParams{Title: "x", TopK: 1, MinRating: ptrF(11)}, "min_rating",
			"min_rating must be less than or equal to 10"},
		{"bad format", recommendParams{Title: "x", TopK: 1, Format: "xml"}, "format",
			"format must be one of: json table"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(&tc.input)
			require.Error(t, err)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			require.Len(t, reqErr.Fields, 1)
			assert.Equal(t, tc.field, reqErr.Fields[0].Field)
			assert.Equal(t, tc.msg, reqErr.Fields[0].Message)
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&recommendParams{Title: "", TopK: 0})
	require.Error(t, err)
	assert.Equal(t, "title must not be blank; top_k must be at least 1", err.Error())
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	err := ValidateStruct("nope")
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "request", reqErr.Fields[0].Field)
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("limit", 50, "min=1,max=100"))

	err := ValidateVar("limit", 150, "min=1,max=100")
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	require.Len(t, reqErr.Fields, 1)
	assert.Equal(t, "limit", reqErr.Fields[0].Field)
	assert.Equal(t, "limit must be at most 100", reqErr.Fields[0].Message)
}

func TestMerge(t *testing.T) {
	assert.NoError(t, Merge(nil, nil))

	err := Merge(
		ValidateVar("limit", 0, "min=1"),
		nil,
		ValidateVar("top_k", 500, "max=100"),
	)
	assert.Equal(t, "limit must be at least 1; top_k must be at most 100", err.Error())

	plain := errors.New("boom")
	assert.Same(t, plain, Merge(ValidateVar("limit", 0, "min=1"), plain))
}
