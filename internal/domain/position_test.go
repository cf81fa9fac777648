package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeSelections() Selections {
	return Selections{
		PositionPresident:        "Mwangi Njoroge",
		PositionVicePresident:    "Nyambura Muthoni",
		PositionSecretaryGeneral: "Kamau Karanja",
		PositionFinanceSecretary: "Makena Mwende",
	}
}

func TestSelectionsValidate(t *testing.T) {
	t.Run("complete ballot passes", func(t *testing.T) {
		assert.NoError(t, completeSelections().Validate())
	})

	t.Run("missing one position", func(t *testing.T) {
		s := completeSelections()
		delete(s, PositionFinanceSecretary)

		err := s.Validate()
		require.Error(t, err)

		var voteErr *VoteError
		require.ErrorAs(t, err, &voteErr)
		assert.Equal(t, CodeIncompleteBallot, voteErr.Code)
		assert.Equal(t, []Position{PositionFinanceSecretary}, voteErr.MissingPositions)
	})

	t.Run("empty selection counts as missing", func(t *testing.T) {
		s := completeSelections()
		s[PositionPresident] = ""

		var voteErr *VoteError
		require.ErrorAs(t, s.Validate(), &voteErr)
		assert.Equal(t, []Position{PositionPresident}, voteErr.MissingPositions)
	})

	t.Run("missing positions reported in canonical order", func(t *testing.T) {
		s := Selections{
			PositionVicePresident: "Kiptoo Langat",
		}

		var voteErr *VoteError
		require.ErrorAs(t, s.Validate(), &voteErr)
		assert.Equal(t, []Position{
			PositionPresident,
			PositionSecretaryGeneral,
			PositionFinanceSecretary,
		}, voteErr.MissingPositions)
	})

	t.Run("unknown position rejected", func(t *testing.T) {
		s := completeSelections()
		s[Position("treasurer")] = "Someone"

		var voteErr *VoteError
		require.ErrorAs(t, s.Validate(), &voteErr)
		assert.Equal(t, CodeIncompleteBallot, voteErr.Code)
		assert.Empty(t, voteErr.MissingPositions)
	})

	t.Run("empty ballot names all four positions", func(t *testing.T) {
		var voteErr *VoteError
		require.ErrorAs(t, Selections{}.Validate(), &voteErr)
		assert.Equal(t, AllPositions(), voteErr.MissingPositions)
	})
}

func TestValidPosition(t *testing.T) {
	for _, p := range AllPositions() {
		assert.True(t, ValidPosition(p), string(p))
	}
	assert.False(t, ValidPosition(Position("chairperson")))
	assert.False(t, ValidPosition(Position("")))
}
