package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Failed is the sentinel hashrate returned for every failure mode of a
// probe: network errors, timeouts, non-success status codes, undecodable
// bodies and missing fields. The keeper classifies any value <= 0 as an
// unhealthy worker, so probing must never propagate an error.
const Failed float64 = -1

// Endpoint describes the status endpoint of a miner.
type Endpoint struct {
	// Host is the host the miner status api listens on
	Host string `conf:"host"`

	// Port is the port the miner status api listens on
	Port int `conf:"port"`

	// Page is the path of the status document. May be empty.
	Page string `conf:"page"`

	// User is the http basic auth user, if any
	User string `conf:"user"`

	// Password is the http basic auth password, if any
	Password string `conf:"password"`

	// Format is the response format of the endpoint. Only "json"
	// is supported.
	Format string `conf:"format"`

	// Parser is the name of the parser used to extract the
	// hashrate from the status document.
	Parser string `conf:"parser"`

	// Timeout bounds every status request. The keeper's loop blocks
	// on probes, so an unresponsive endpoint must not hang it.
	Timeout time.Duration `conf:"timeout"`
}

// URL builds the status url, embedding basic auth credentials in
// authority form when both user and password are set.
func (e Endpoint) URL() string {
	u := url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", e.Host, e.Port),
		Path:   "/" + e.Page,
	}

	if e.User != "" && e.Password != "" {
		u.User = url.UserPassword(e.User, e.Password)
	}

	return u.String()
}

// Prober polls a miner status endpoint and extracts its hashrate.
type Prober struct {
	url    string
	parse  ParseFunc
	client *http.Client

	log *zap.Logger
}

// New creates a prober for the given endpoint. The endpoint's format
// and parser are validated here, so a misconfigured prober fails at
// startup rather than silently reporting Failed forever.
func New(endpoint Endpoint, log *zap.Logger) (*Prober, error) {
	if endpoint.Format != "json" {
		return nil, fmt.Errorf("unsupported status format %q", endpoint.Format)
	}

	parse, err := LookupParser(endpoint.Parser)
	if err != nil {
		return nil, err
	}

	return &Prober{
		url:   endpoint.URL(),
		parse: parse,
		client: &http.Client{
			Timeout: endpoint.Timeout,
		},
		log: log.Named("probe"),
	}, nil
}

// Hashrate fetches the status document and extracts the current
// hashrate. It returns Failed on any error.
func (p *Prober) Hashrate(ctx context.Context) float64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.log.Error("failed to build status request", zap.Error(err))
		return Failed
	}

	res, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("status request failed", zap.Error(err))
		return Failed
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		p.log.Warn("status request returned non-ok status",
			zap.Int("status", res.StatusCode),
		)
		return Failed
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		p.log.Warn("failed to read status body", zap.Error(err))
		return Failed
	}

	hashrate, err := p.parse(sanitize(body))
	if err != nil {
		p.log.Warn("failed to parse status body", zap.Error(err))
		return Failed
	}

	return hashrate
}

// sanitize strips every byte that is not a printable ascii character.
// Some miners emit garbage bytes in their status documents, which would
// otherwise trip the json decoder.
func sanitize(body []byte) []byte {
	out := make([]byte, 0, len(body))

	for _, b := range body {
		if (b >= 0x20 && b <= 0x7e) ||
			b == '\t' || b == '\n' || b == '\v' || b == '\f' || b == '\r' {
			out = append(out, b)
		}
	}

	return out
}
