package flickr

import "net/http"

// apiKeyTransport appends the query parameters every Flickr REST call needs
type apiKeyTransport struct {
	apiKey string
	next   http.RoundTripper
}

func newAPIKeyTransport(apiKey string, next http.RoundTripper) *apiKeyTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &apiKeyTransport{apiKey: apiKey, next: next}
}

// RoundTrip clones the request so the caller's URL is left untouched
func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	q := out.URL.Query()
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	q.Set("api_key", t.apiKey)
	out.URL.RawQuery = q.Encode()
	return t.next.RoundTrip(out)
}
