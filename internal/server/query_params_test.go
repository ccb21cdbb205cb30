package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalInt(t *testing.T) {
	v, err := parseOptionalInt("", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	v, err = parseOptionalInt(" 15 ", 30)
	require.NoError(t, err)
	assert.Equal(t, 15, v)

	_, err = parseOptionalInt("abc", 30)
	assert.Error(t, err)
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList(""))
	assert.Equal(t, []string{"HIGH_USAGE"}, parseList("HIGH_USAGE"))
	assert.Equal(t, []string{"HIGH_USAGE", "LOW_USAGE"}, parseList("HIGH_USAGE, LOW_USAGE"))
	assert.Equal(t, []string{"a"}, parseList(",a,,"))
}

func TestParseSnowflakeID(t *testing.T) {
	id, err := parseSnowflakeID("1234567890123456789")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = parseSnowflakeID("bogus")
	assert.Error(t, err)

	_, err = parseSnowflakeID("0")
	assert.Error(t, err)
}
