package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeyTally() string {
	return kb.BuildKey(KeyTally)
}

func (kb *KeyBuilder) KeyVoterVoted(voterID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyVoterVoted, voterID))
}

func (kb *KeyBuilder) KeyCandidatesAll() string {
	return kb.BuildKey(KeyCandidatesAll)
}

func (kb *KeyBuilder) KeyResultsETag(etag string) string {
	return kb.BuildKey(fmt.Sprintf(KeyResultsETag, etag))
}

// KeyCustom builds a prefixed key from an arbitrary pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
