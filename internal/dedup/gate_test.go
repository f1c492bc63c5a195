package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/remates-cli/internal/bulletin"
	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/store/mocks"
)

func rec(i int, m string) Record {
	return Record{Candidate: bulletin.Candidate{Index: i}, Matricula: m}
}

func TestPartition_SingleLookup(t *testing.T) {
	st := mocks.NewMockStore(t)
	st.On("FindExisting", mock.Anything, []string{"1-000", "2-000", "3-000"}).
		Return(map[string]*model.Remate{"2-000": {Matricula: "2-000"}}, nil).Once()

	p, err := New(st).Partition(context.Background(), []Record{
		rec(1, "1-000"), rec(2, "2-000"), rec(3, "3-000"), rec(4, "1-000"),
	})
	require.NoError(t, err)

	require.Len(t, p.Existing, 1)
	assert.Equal(t, 2, p.Existing[0].Candidate.Index)
	assert.Equal(t, "2-000", p.Existing[0].Stored.Matricula)

	require.Len(t, p.New, 3)
	assert.Equal(t, []int{1, 3, 4}, []int{p.New[0].Candidate.Index, p.New[1].Candidate.Index, p.New[2].Candidate.Index})
}

func TestPartition_LookupFailureRoutesAllAsNew(t *testing.T) {
	st := mocks.NewMockStore(t)
	st.On("FindExisting", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	in := []Record{rec(1, "1-000"), rec(2, "2-000")}
	p, err := New(st).Partition(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dedup: find existing")
	assert.Equal(t, in, p.New)
	assert.Empty(t, p.Existing)
}

func TestPartition_NothingResolved(t *testing.T) {
	st := mocks.NewMockStore(t)
	p, err := New(st).Partition(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, p.New)
	assert.Empty(t, p.Existing)
}

func TestResolve(t *testing.T) {
	cands := []bulletin.Candidate{
		{Index: 1, Text: "finca del partido de Heredia, matrícula número 627947-000, COLINDA: norte calle"},
		{Index: 2, Text: "Sáquese a remate la finca sin datos registrales legibles"},
	}
	resolved, unresolved := Resolve(cands)
	require.Len(t, resolved, 1)
	assert.Equal(t, "627947-000", resolved[0].Matricula)
	assert.True(t, resolved[0].Keyword)
	require.Len(t, unresolved, 1)
	assert.Equal(t, 2, unresolved[0].Candidate.Index)
	assert.Empty(t, unresolved[0].Matricula)
}

func TestResolveBareDigitsAreNotKeyword(t *testing.T) {
	cands := []bulletin.Candidate{
		{Index: 1, Text: " 2025123456789, sáquese a remate la finca inscrita bajo el número 627947, derecho 000."},
	}
	resolved, unresolved := Resolve(cands)
	require.Len(t, resolved, 1)
	assert.Empty(t, unresolved)
	assert.Equal(t, "627947", resolved[0].Matricula)
	assert.False(t, resolved[0].Keyword)
}
