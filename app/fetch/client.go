package fetch

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheSize = 2048

// Request describes one upstream call. When IncludeOptions is set the
// header set becomes part of the cache key, so calls that differ only in
// headers are cached separately.
type Request struct {
	Method         string
	URL            string
	Header         http.Header
	IncludeOptions bool
}

// Response is a fully buffered upstream response. Instances stored in the
// cache are never mutated; callers receive their own copy of the struct.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// EvictFunc removes the cache entry written for the request that produced
// it. Callers use it when they discover after caching that the body was
// unusable, so a transient upstream format change cannot poison the cache.
type EvictFunc func()

// Client wraps an HTTP client with a TTL-bounded response cache. Identical
// in-flight requests are not deduplicated: two concurrent misses for the
// same key may both hit the network, which is harmless since results are
// deterministic.
type Client struct {
	httpClient *http.Client
	cache      *expirable.LRU[string, *Response]
}

func NewClient(ttl time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		cache:      expirable.NewLRU[string, *Response](cacheSize, nil, ttl),
	}
}

// Do returns the cached response for the request key if present, otherwise
// performs the call, stores the result and returns it. The returned
// EvictFunc is always safe to call, including on responses that were never
// cached.
func (c *Client) Do(ctx context.Context, req Request) (*Response, EvictFunc, error) {
	key := cacheKey(req)
	evict := func() { c.cache.Remove(key) }

	if cached, ok := c.cache.Get(key); ok {
		return cached, evict, nil
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, evict, fmt.Errorf("failed to build request for %s: %w", req.URL, err)
	}
	for name, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, evict, fmt.Errorf("failed to fetch %s: %w", req.URL, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, evict, fmt.Errorf("failed to read response from %s: %w", req.URL, err)
	}

	resp := &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header.Clone(),
		Body:   body,
	}

	c.cache.Add(key, resp)

	return resp, evict, nil
}

func cacheKey(req Request) string {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	key := method + " " + req.URL
	if req.IncludeOptions && len(req.Header) > 0 {
		key += "#" + hashHeader(req.Header)
	}
	return key
}

func hashHeader(header http.Header) string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(strings.Join(header[name], ","))
		b.WriteString("\n")
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
