package pkg

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/listview"
)

const (
	// SearchParam carries the free-text term of a list view.
	SearchParam = "search"
	maxPageSize = 100
)

// ListRequest is a list view query parsed from the console request.
type ListRequest struct {
	Patch   listview.Patch
	Refresh bool
}

// ParseListRequest extracts search, filters, page and size from query
// params. Only parameters present in the request end up in the patch, so
// absent ones leave the controller's criteria untouched. Page is 0-based;
// size is clamped to [1, 100]. Keys outside filterKeys are ignored.
func ParseListRequest(c *gin.Context, filterKeys ...string) ListRequest {
	var req ListRequest
	q := c.Request.URL.Query()

	if q.Has(SearchParam) {
		term := strings.TrimSpace(q.Get(SearchParam))
		req.Patch.Term = &term
	}

	for _, key := range filterKeys {
		if !q.Has(key) {
			continue
		}
		if req.Patch.Filter == nil {
			req.Patch.Filter = make(map[string]string, len(filterKeys))
		}
		req.Patch.Filter[key] = strings.TrimSpace(q.Get(key))
	}

	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			page = max(page, 0)
			req.Patch.Page = &page
		}
	}
	if v := q.Get("size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			size = min(size, maxPageSize)
			req.Patch.Size = &size
		}
	}

	req.Refresh, _ = strconv.ParseBool(q.Get("refresh"))
	return req
}

// ParseID parses the :id path parameter. ok is false when it is not a
// positive integer.
func ParseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
