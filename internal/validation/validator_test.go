package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/movienight/internal/errors"
	"github.com/listenupapp/movienight/internal/validation"
)

type entry struct {
	MovieID int64 `json:"movieId" validate:"gt=0"`
	Rank    int   `json:"rank" validate:"gte=1,lte=5"`
}

type ballot struct {
	Rankings []entry `json:"rankings" validate:"required,max=5,unique=MovieID,dive"`
}

type credentials struct {
	UserID int64  `json:"userId" validate:"gt=0"`
	Token  string `json:"token" validate:"required,printascii"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(ballot{Rankings: []entry{{MovieID: 10, Rank: 1}, {MovieID: 20, Rank: 2}}})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		input     any
		wantField string
		wantMsg   string
	}{
		{
			name:      "non-positive movie id",
			input:     ballot{Rankings: []entry{{MovieID: 1, Rank: 1}, {MovieID: 0, Rank: 2}}},
			wantField: "rankings[1].movieId",
			wantMsg:   "must be greater than 0",
		},
		{
			name:      "rank out of range",
			input:     ballot{Rankings: []entry{{MovieID: 1, Rank: 6}}},
			wantField: "rankings[0].rank",
			wantMsg:   "must be less than or equal to 5",
		},
		{
			name:      "duplicate movie",
			input:     ballot{Rankings: []entry{{MovieID: 3, Rank: 1}, {MovieID: 3, Rank: 2}}},
			wantField: "rankings",
			wantMsg:   "must not contain duplicates",
		},
		{
			name:      "empty ballot",
			input:     ballot{},
			wantField: "rankings",
			wantMsg:   "is required",
		},
		{
			name:      "missing token",
			input:     credentials{UserID: 4},
			wantField: "token",
			wantMsg:   "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrValidation)

			var domainErr *errors.Error
			require.ErrorAs(t, err, &domainErr)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField], "details: %v", details)
			assert.Contains(t, domainErr.Message, tt.wantField)
		})
	}
}
