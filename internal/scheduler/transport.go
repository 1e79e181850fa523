package scheduler

import (
	"bufio"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
)

type debugLogger interface {
	Debugf(string, ...any)
}

type clientOptions struct {
	timeout          time.Duration
	userAgent        string
	cookie           string
	cookieFile       string
	headers          http.Header
	transport        http.RoundTripper
	cloudflareBypass bool
	log              debugLogger
}

func newHTTPClient(opts clientOptions) *http.Client {
	jar, _ := cookiejar.New(nil)

	var baseTransport http.RoundTripper
	if opts.transport != nil {
		baseTransport = opts.transport
	} else {
		baseTransport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxConnsPerHost:     16,
			MaxIdleConnsPerHost: 16,
			ForceAttemptHTTP2:   true,
		}
	}

	if opts.cloudflareBypass {
		baseTransport = cloudflarebp.AddCloudFlareByPass(baseTransport)
	}

	return &http.Client{
		Timeout: opts.timeout,
		Transport: roundTripper{
			base:         baseTransport,
			ua:           opts.userAgent,
			cookieHeader: joinCookies(opts.cookie, opts.cookieFile),
			headers:      opts.headers.Clone(),
			log:          opts.log,
		},
		Jar: jar,
	}
}

// roundTripper applies the process-wide headers. Values set on the request
// itself win, except Cookie which is merged.
type roundTripper struct {
	base         http.RoundTripper
	ua           string
	cookieHeader string
	headers      http.Header
	log          debugLogger
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	for k, vs := range rt.headers {
		if req.Header.Get(k) != "" || len(vs) == 0 {
			continue
		}
		req.Header[k] = append([]string(nil), vs...)
	}

	if rt.ua != "" {
		req.Header.Set("User-Agent", rt.ua)
	}

	if rt.cookieHeader != "" {
		if own := req.Header.Get("Cookie"); own != "" {
			req.Header.Set("Cookie", own+"; "+rt.cookieHeader)
		} else {
			req.Header.Set("Cookie", rt.cookieHeader)
		}
	}

	if rt.log != nil {
		rt.log.Debugf("HTTP %s %s\n", req.Method, req.URL.String())
	}

	return rt.base.RoundTrip(req)
}

func joinCookies(inline, file string) string {
	s := strings.TrimSpace(inline)
	if file != "" {
		if b, err := os.ReadFile(file); err == nil {
			// first non-empty line
			sc := bufio.NewScanner(strings.NewReader(string(b)))
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line != "" {
					if s == "" {
						s = line
					} else {
						s = s + "; " + line
					}
					break
				}
			}
		}
	}

	return s
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
