package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableArrayPart(t *testing.T) {
	tbl := NewTable()
	for i := 1; i <= 5; i++ {
		require.NoError(t, tbl.Set(IntValue(int64(i)), IntValue(int64(i*10))))
	}
	require.Equal(t, 5, tbl.Len())
	require.Equal(t, IntValue(30), tbl.Get(IntValue(3)))
	require.Equal(t, Nil, tbl.Get(IntValue(6)))
}

func TestTableIsAValue(t *testing.T) {
	var v Value = NewTable()
	require.Equal(t, "table", v.TypeName())
	tbl, ok := v.(*Table)
	require.True(t, ok)
	require.NoError(t, tbl.Set(StringValue("k"), tbl))
}

func TestTableMissingKeyIsNil(t *testing.T) {
	tbl := NewTable()
	require.Equal(t, Nil, tbl.Get(StringValue("nope")))
}

func TestTableNilKeyRejected(t *testing.T) {
	tbl := NewTable()
	err := tbl.Set(Nil, IntValue(1))
	require.Error(t, err)
}

func TestTableFloatKeyNormalized(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set(FloatValue(1), StringValue("one")))
	require.Equal(t, StringValue("one"), tbl.Get(IntValue(1)))
	require.Equal(t, 1, tbl.Len())
}

func TestTableAbsorbsHashIntoArray(t *testing.T) {
	tbl := NewTable()
	// 2 lands in the hash part, then 1 arrives and the run heals.
	require.NoError(t, tbl.Set(IntValue(2), StringValue("b")))
	require.Equal(t, 0, tbl.Len())
	require.NoError(t, tbl.Set(IntValue(1), StringValue("a")))
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, StringValue("b"), tbl.Get(IntValue(2)))
}

func TestTableRemovalTruncatesArray(t *testing.T) {
	tbl := NewTable()
	for i := 1; i <= 4; i++ {
		require.NoError(t, tbl.Set(IntValue(int64(i)), IntValue(int64(i))))
	}
	require.NoError(t, tbl.Set(IntValue(2), Nil))
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, Nil, tbl.Get(IntValue(2)))
	// Survivors past the gap stay reachable through the hash part.
	require.Equal(t, IntValue(3), tbl.Get(IntValue(3)))
	require.Equal(t, IntValue(4), tbl.Get(IntValue(4)))
}

func TestTableNextFullTraversal(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set(IntValue(1), StringValue("a")))
	require.NoError(t, tbl.Set(IntValue(2), StringValue("b")))
	require.NoError(t, tbl.Set(StringValue("x"), IntValue(10)))
	require.NoError(t, tbl.Set(StringValue("y"), IntValue(20)))

	seen := map[string]bool{}
	key := Value(Nil)
	for {
		k, _, err := tbl.Next(key)
		require.NoError(t, err)
		if _, done := k.(NilValue); done {
			break
		}
		seen[ToString(k)] = true
		key = k
	}
	require.Len(t, seen, 4)
}

func TestTableMetatable(t *testing.T) {
	tbl, meta := NewTable(), NewTable()
	require.Nil(t, tbl.Meta())
	tbl.SetMeta(meta)
	require.Same(t, meta, tbl.Meta())
	tbl.SetMeta(nil)
	require.Nil(t, tbl.Meta())
}

func TestSelfReferentialTable(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set(StringValue("self"), tbl))
	require.Same(t, tbl, tbl.Get(StringValue("self")))
}
