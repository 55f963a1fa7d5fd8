package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDListScansDriverVariants(t *testing.T) {
	var fromBytes, fromString, fromNil IDList
	require.NoError(t, fromBytes.Scan([]byte("[1,2,3]")))
	require.NoError(t, fromString.Scan("[4]"))
	require.NoError(t, fromNil.Scan(nil))

	assert.Equal(t, IDList{1, 2, 3}, fromBytes)
	assert.Equal(t, IDList{4}, fromString)
	assert.Empty(t, fromNil)

	var bad IDList
	assert.Error(t, bad.Scan(42))
}

func TestIDListValueNeverNull(t *testing.T) {
	var empty IDList
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestIDListContains(t *testing.T) {
	l := IDList{7, 9}
	assert.True(t, l.Contains(9))
	assert.False(t, l.Contains(8))
	assert.False(t, IDList(nil).Contains(1))
}
