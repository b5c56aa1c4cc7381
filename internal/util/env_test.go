package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github/chapool/go-remotesigner/internal/util"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("UTIL_TEST_STRING", "value")
	assert.Equal(t, "value", util.GetEnv("UTIL_TEST_STRING", "default"))
	assert.Equal(t, "default", util.GetEnv("UTIL_TEST_STRING_UNSET", "default"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("UTIL_TEST_INT", "42")
	assert.Equal(t, 42, util.GetEnvAsInt("UTIL_TEST_INT", 1))
	t.Setenv("UTIL_TEST_INT", "nope")
	assert.Equal(t, 1, util.GetEnvAsInt("UTIL_TEST_INT", 1))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("UTIL_TEST_BOOL", "true")
	assert.True(t, util.GetEnvAsBool("UTIL_TEST_BOOL", false))
	t.Setenv("UTIL_TEST_BOOL", "not-a-bool")
	assert.False(t, util.GetEnvAsBool("UTIL_TEST_BOOL", false))
}

func TestGetEnvAsStringArr(t *testing.T) {
	t.Setenv("UTIL_TEST_ARR", "a,b,c")
	assert.Equal(t, []string{"a", "b", "c"}, util.GetEnvAsStringArr("UTIL_TEST_ARR", nil))
	t.Setenv("UTIL_TEST_ARR", "a|b")
	assert.Equal(t, []string{"a", "b"}, util.GetEnvAsStringArr("UTIL_TEST_ARR", nil, "|"))
}
