package redis

import "fmt"

// Key prefix for all client credential data
const keyPrefix = "tourcompanion:cred"

// credentialKey returns the Redis key for a credential entry in a namespace
func credentialKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, namespace, key)
}
