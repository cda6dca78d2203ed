package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/unikit/internal/domain"
)

func TestAddFriend(t *testing.T) {
	tests := []struct {
		name    string
		friend  string
		cgpa    float64
		want    float64
		wantErr error
	}{
		{name: "rounded", friend: "Asha", cgpa: 8.456, want: 8.46},
		{name: "top", friend: "Ben", cgpa: 10, want: 10},
		{name: "blank name", friend: "  ", cgpa: 5, wantErr: domain.ErrInvalid},
		{name: "too high", friend: "Cy", cgpa: 10.01, wantErr: domain.ErrOutOfRange},
		{name: "negative", friend: "Di", cgpa: -0.5, wantErr: domain.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Roster
			f, err := r.AddFriend(tt.friend, tt.cgpa)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, r.Friends)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, f.ID)
			assert.Equal(t, tt.want, f.CGPA)
			assert.Len(t, r.Friends, 1)
		})
	}
}

func TestRemoveFriend(t *testing.T) {
	var r Roster
	a, _ := r.AddFriend("A", 7)
	b, _ := r.AddFriend("B", 8)

	require.NoError(t, r.RemoveFriend(a.ID))
	assert.Equal(t, []domain.Friend{b}, r.Friends)
	assert.ErrorIs(t, r.RemoveFriend(a.ID), domain.ErrNotFound)
}

func TestRankings(t *testing.T) {
	r := Roster{}
	require.NoError(t, r.SetMine(8))
	_, _ = r.AddFriend("Asha", 9.1)
	_, _ = r.AddFriend("Ben", 8)
	_, _ = r.AddFriend("Cy", 6.5)

	got := r.Rankings()
	require.Len(t, got, 4)
	assert.Equal(t, domain.Ranking{Rank: 1, Name: "Asha", CGPA: 9.1}, got[0])
	assert.Equal(t, domain.Ranking{Rank: 2, Name: MeName, CGPA: 8, Me: true}, got[1])
	assert.Equal(t, "Ben", got[2].Name)
	assert.Equal(t, 4, got[3].Rank)
}

func TestSetMine(t *testing.T) {
	var r Roster
	require.NoError(t, r.SetMine(7.777))
	assert.Equal(t, 7.78, r.Mine)
	assert.ErrorIs(t, r.SetMine(11), domain.ErrOutOfRange)
	assert.Equal(t, 7.78, r.Mine)
}

func TestResolve(t *testing.T) {
	var r Roster
	f, _ := r.AddFriend("A", 7)
	id, err := r.Resolve(f.ID[:6])
	require.NoError(t, err)
	assert.Equal(t, f.ID, id)
	_, err = r.Resolve("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
