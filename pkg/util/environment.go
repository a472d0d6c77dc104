package util

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// EnvironmentInt returns the integer value of key, or defaultValue when it is unset.
func EnvironmentInt(env map[string]string, key string, defaultValue int) (int, error) {
	if env[key] == "" {
		return defaultValue, nil
	}

	return strconv.Atoi(env[key])
}

// EnvironmentDuration parses a Go duration string such as "90m" from key.
func EnvironmentDuration(env map[string]string, key string, defaultValue time.Duration) (time.Duration, error) {
	if env[key] == "" {
		return defaultValue, nil
	}

	return time.ParseDuration(env[key])
}
