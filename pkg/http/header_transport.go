package http

import "net/http"

type headerTransport struct {
	headers   map[string]string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	for key, value := range t.headers {
		if value != "" {
			reqCopy.Header.Set(key, value)
		}
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithHeader sets a static header on every outbound request. Empty values are skipped.
func WithHeader(key, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			headers:   map[string]string{key: value},
			transport: rt,
		}
	})
}

// WithAuthToken sets a bearer Authorization header on every outbound request
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return WithHeader("Authorization", "")
	}
	return WithHeader("Authorization", "Bearer "+token)
}
