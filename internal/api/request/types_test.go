package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/banglascrabble/internal/model"
)

func TestMoveRequestValidate(t *testing.T) {
	assert.ErrorIs(t, MoveRequest{}.Validate(), ErrNoPlacements)
	assert.ErrorIs(t, MoveRequest{Placements: []Placement{}}.Validate(), ErrNoPlacements)

	err := MoveRequest{Placements: []Placement{
		{Letter: "ক", Row: 7, Col: 7},
		{Letter: "", Row: 7, Col: 8},
	}}.Validate()
	require.Error(t, err)
	assert.EqualError(t, err, "placements[1].letter is required")

	assert.NoError(t, MoveRequest{Placements: []Placement{{Letter: "*", Row: 7, Col: 7}}}.Validate())
}

func TestMoveRequestToModel(t *testing.T) {
	req := MoveRequest{Placements: []Placement{{Letter: "ঘ", Row: 7, Col: 7}}}
	assert.Equal(t, []model.Placement{{Letter: "ঘ", Row: 7, Col: 7}}, req.ToModel())
}
