package storage

import (
	"fmt"
	"net/url"
	"strings"
)

const awsHostSuffix = ".amazonaws.com"

func normalizeEndpoint(endpoint string) string {
	return strings.TrimRight(strings.TrimSpace(endpoint), "/")
}

// ValidateEndpoint checks a custom S3 endpoint. An empty endpoint selects the
// regional AWS endpoint and is always valid. Without allowedHosts only
// *.amazonaws.com hosts are accepted.
func ValidateEndpoint(endpoint string, allowedHosts []string) error {
	endpoint = normalizeEndpoint(endpoint)
	if endpoint == "" {
		return nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid S3 endpoint: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid S3 endpoint %q: absolute URL with host is required", endpoint)
	}
	if u.User != nil {
		return fmt.Errorf("invalid S3 endpoint %q: userinfo is not allowed", endpoint)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid S3 endpoint %q: query and fragment are not allowed", endpoint)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("invalid S3 endpoint %q: host is required", endpoint)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("invalid S3 endpoint %q: https is required", endpoint)
	}

	allowed := normalizeAllowedHosts(allowedHosts)
	if len(allowed) == 0 {
		if !strings.HasSuffix(host, awsHostSuffix) {
			return fmt.Errorf("invalid S3 endpoint %q: host %q is not an AWS host and no allowed hosts are configured", endpoint, host)
		}
		return nil
	}
	if _, ok := allowed[host]; !ok {
		return fmt.Errorf("invalid S3 endpoint %q: host %q is not in allowed_hosts", endpoint, host)
	}
	return nil
}

func normalizeAllowedHosts(allowedHosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if v == "" {
			continue
		}
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		out[v] = struct{}{}
	}
	return out
}
