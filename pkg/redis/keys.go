package redis

import "strings"

const keyNamespace = "ovenly"

// key joins non-blank parts under the ovenly namespace, e.g.
// ovenly:idempotency:<scope>:<id>.
func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}

// IdempotencyKey namespaces a replay record by route scope and client key.
func (c *Client) IdempotencyKey(scope, id string) string {
	return key("idempotency", scope, id)
}

// RateLimitKey namespaces a fixed-window counter.
func (c *Client) RateLimitKey(scope string) string {
	return key("rate_limit", scope)
}

// LockKey namespaces a distributed lease.
func LockKey(name string) string {
	return key("lock", name)
}
