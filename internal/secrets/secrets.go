// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a .env file layered under the
// process environment. The environment always wins, so deployments can
// override a checked-in .env without editing it.
//
// Recognized keys: DEEPSEEK_API_KEY, DEEPSEEK_ENDPOINT.
package secrets

import (
	"os"

	"github.com/joho/godotenv"
)

// Recognized credential keys.
const (
	KeyDeepseekAPIKey   = "DEEPSEEK_API_KEY"
	KeyDeepseekEndpoint = "DEEPSEEK_ENDPOINT"
)

var knownKeys = []string{KeyDeepseekAPIKey, KeyDeepseekEndpoint}

// Load reads the .env file at path and returns the recognized keys merged
// with the process environment. A missing file is not an error — it simply
// means regex-only mode unless the environment provides a key. Returns the
// map and the list of keys that resolved to non-empty values.
func Load(path string) (map[string]string, []string) {
	fileVals, err := godotenv.Read(path)
	if err != nil {
		fileVals = map[string]string{}
	}

	secrets := make(map[string]string)
	var present []string
	for _, key := range knownKeys {
		val := os.Getenv(key)
		if val == "" {
			val = fileVals[key]
		}
		if val != "" {
			secrets[key] = val
			present = append(present, key)
		}
	}
	return secrets, present
}
