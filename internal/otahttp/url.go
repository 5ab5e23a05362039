package otahttp

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// urlFromReq reconstructs the URL the client used to reach the server,
// honoring the headers set by reverse proxies.
func urlFromReq(r *http.Request) (*url.URL, error) {
	if forwarded := r.Header.Get("Forwarded"); forwarded != "" {
		var (
			// Only the element added by the proxy nearest the client matters.
			first, _, _ = strings.Cut(forwarded, ",")
			params      = strings.Split(first, ";")
			scheme      string
			host        string
		)
		for _, param := range params {
			parts := strings.SplitN(strings.TrimSpace(param), "=", 2)
			if len(parts) != 2 {
				continue
			}
			switch strings.ToLower(parts[0]) {
			case "proto":
				scheme = strings.Trim(parts[1], `"`)
			case "host":
				host = strings.Trim(parts[1], `"`)
			}
		}

		if scheme != "" && host != "" {
			return url.Parse(fmt.Sprintf("%s://%s", scheme, host))
		}
	}

	scheme := "http"
	if forwardedProto := r.Header.Get("X-Forwarded-Proto"); forwardedProto != "" {
		scheme, _, _ = strings.Cut(forwardedProto, ",")
		scheme = strings.TrimSpace(scheme)
	} else if r.TLS != nil {
		scheme = "https"
	}

	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	} else {
		host, _, _ = strings.Cut(host, ",")
		host = strings.TrimSpace(host)
	}

	return url.Parse(fmt.Sprintf("%s://%s", scheme, host))
}
