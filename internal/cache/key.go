package cache

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// DeriveKey builds a stable cache key from the route mount path, the route
// path and the query parameters. The query is serialized as JSON, whose
// encoder emits map keys in sorted order, so parameter order never matters.
// Repeated values for one parameter keep their order.
func DeriveKey(mount, path string, query url.Values) (string, error) {
	if query == nil {
		query = url.Values{}
	}
	q, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("cache: encode query: %w", err)
	}
	return mount + path + string(q), nil
}

// KeyForRequest derives the key for an inbound request. The request path
// already carries the mount prefix, so it is used as-is.
func KeyForRequest(r *http.Request) (string, error) {
	return DeriveKey("", r.URL.Path, r.URL.Query())
}
