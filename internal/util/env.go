package util

import (
	"os"
	"strconv"
	"strings"
)

// GetEnv returns the value of the environment variable key, or defaultVal if
// it is unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// GetEnvAsInt returns the environment variable key parsed as int, or
// defaultVal if it is unset or unparsable.
func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultVal
}

// GetEnvAsBool returns the environment variable key parsed as bool, or
// defaultVal if it is unset or unparsable.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")
	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}
	return defaultVal
}

// GetEnvAsStringArr returns the environment variable key split on separator
// (default ","), or defaultVal if it is unset or empty.
func GetEnvAsStringArr(key string, defaultVal []string, separator ...string) []string {
	strVal := GetEnv(key, "")
	if strVal == "" {
		return defaultVal
	}

	sep := ","
	if len(separator) >= 1 {
		sep = separator[0]
	}

	return strings.Split(strVal, sep)
}
