package client

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/simp-lee/amcham/internal/domain"
)

// DefaultPageSize is used when a criteria carries no size.
const DefaultPageSize = 10

// Query builds list parameters from c. page and size are always sent; the
// term goes under termParam and each active filter under its mapped
// parameter name. Empty values and the "all" sentinel are omitted.
func Query(c domain.Criteria, termParam string, filterParams map[string]string) url.Values {
	q := url.Values{}
	page := c.Page
	if page < 0 {
		page = 0
	}
	size := c.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	if term := strings.TrimSpace(c.Term); term != "" && termParam != "" {
		q.Set(termParam, term)
	}
	for key, param := range filterParams {
		if v := c.ActiveFilter(key); v != "" {
			q.Set(param, v)
		}
	}
	return q
}
