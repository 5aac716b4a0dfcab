package client

import "strings"

type publicPath struct {
	method string
	path   string
	prefix bool
	// segments is set when path holds "{name}" placeholders; each one
	// matches exactly one non-empty path segment.
	segments []string
}

// parsePublicPaths reads "[METHOD ]/path[*]" entries. A "{id}" segment
// matches any single segment.
func parsePublicPaths(entries []string) []publicPath {
	out := make([]publicPath, 0, len(entries))
	for _, e := range entries {
		fields := strings.Fields(e)
		var p publicPath
		switch len(fields) {
		case 1:
			p.path = fields[0]
		case 2:
			p.method, p.path = strings.ToUpper(fields[0]), fields[1]
		default:
			continue
		}
		if strings.HasSuffix(p.path, "*") {
			p.prefix = true
			p.path = strings.TrimSuffix(p.path, "*")
		}
		if strings.Contains(p.path, "{") {
			p.segments = strings.Split(p.path, "/")
		}
		out = append(out, p)
	}
	return out
}

func (c *Client) isPublic(method, path string) bool {
	for _, p := range c.public {
		if p.method != "" && p.method != method {
			continue
		}
		if p.segments != nil {
			if matchSegments(p.segments, path) {
				return true
			}
			continue
		}
		if p.path == path || (p.prefix && strings.HasPrefix(path, p.path)) {
			return true
		}
	}
	return false
}

func matchSegments(pattern []string, path string) bool {
	parts := strings.Split(path, "/")
	if len(parts) != len(pattern) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if parts[i] == "" {
				return false
			}
			continue
		}
		if seg != parts[i] {
			return false
		}
	}
	return true
}
