package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	q := NewQuery(0)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, StatusAll, q.Status)
	assert.Equal(t, DefaultSortField, q.SortField)

	assert.Equal(t, MaxPageSize, NewQuery(1000).PageSize)
}

func TestQuery_MilkTypeClearsSubcategory(t *testing.T) {
	q := NewQuery(10)
	q = q.WithMilkType("A")
	q, err := q.WithSubcategory("A1")
	require.NoError(t, err)
	q, err = q.WithPage(3)
	require.NoError(t, err)

	cleared := q.WithMilkType("")

	assert.Empty(t, cleared.MilkType)
	assert.Empty(t, cleared.Subcategory)
	assert.Equal(t, 1, cleared.Page)

	changed := q.WithMilkType("B")
	assert.Equal(t, "B", changed.MilkType)
	assert.Empty(t, changed.Subcategory)
	assert.Equal(t, 1, changed.Page)
}

func TestQuery_SameMilkTypeIsNoChange(t *testing.T) {
	q := NewQuery(10).WithMilkType("A")
	q, err := q.WithSubcategory("A1")
	require.NoError(t, err)

	assert.Equal(t, q, q.WithMilkType("A"))
}

func TestQuery_SubcategoryRequiresMilkType(t *testing.T) {
	q := NewQuery(10)
	_, err := q.WithSubcategory("A1")
	assert.ErrorIs(t, err, ErrSubcategoryWithoutMilkType)

	q, err = q.WithSubcategory("")
	require.NoError(t, err)
	assert.Empty(t, q.Subcategory)
}

func TestQuery_FilterChangesResetPage(t *testing.T) {
	base, err := NewQuery(10).WithPage(4)
	require.NoError(t, err)

	q, err := base.WithStatus(StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, StatusInactive, q.Status)

	_, err = base.WithStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)

	assert.Equal(t, 1, base.WithSearch("ravi").Page)
	assert.Equal(t, 1, base.WithPageSize(50).Page)
}

func TestQuery_ToggleSort(t *testing.T) {
	q, err := NewQuery(10).WithPage(2)
	require.NoError(t, err)

	t.Run("new field starts ascending on page one", func(t *testing.T) {
		s, err := q.ToggleSort("name")
		require.NoError(t, err)
		assert.Equal(t, "name", s.SortField)
		assert.Equal(t, SortAsc, s.SortOrder)
		assert.Equal(t, 1, s.Page)
	})

	t.Run("active field flips order", func(t *testing.T) {
		s, err := q.ToggleSort("name")
		require.NoError(t, err)
		s, err = s.WithPage(2)
		require.NoError(t, err)

		flipped, err := s.ToggleSort("name")
		require.NoError(t, err)
		assert.Equal(t, SortDesc, flipped.SortOrder)
		assert.Equal(t, 2, flipped.Page)

		back, err := flipped.ToggleSort("name")
		require.NoError(t, err)
		assert.Equal(t, SortAsc, back.SortOrder)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := q.ToggleSort("password")
		assert.ErrorIs(t, err, ErrInvalidSortField)
	})
}

func TestQuery_WithPage(t *testing.T) {
	_, err := NewQuery(10).WithPage(0)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestCountActive(t *testing.T) {
	list := []Customer{{IsActive: true}, {IsActive: false}, {IsActive: true}}
	assert.Equal(t, 2, CountActive(list))
	assert.Equal(t, 0, CountActive(nil))
}

func TestQueryResult_IDs(t *testing.T) {
	r := QueryResult{Items: []Customer{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, []string{"a", "b"}, r.IDs())
}
