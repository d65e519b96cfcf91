package provider

import (
	"crypto/tls"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"

	"github.com/ZaguanLabs/transroute"
)

// NewHTTPClient returns the client used for every provider call: TLS 1.2 or
// newer with full certificate verification, HTTP/2 enabled and the library
// User-Agent. It has no overall timeout; each attempt carries its own deadline.
func NewHTTPClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	if err := http2.ConfigureTransport(tr); err != nil {
		log.WithError(err).Warn("HTTP/2 not available, using HTTP/1.1")
	}
	return &http.Client{
		Transport: &userAgentTransport{base: tr, agent: transroute.UserAgent()},
	}
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(r)
}
