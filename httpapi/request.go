package httpapi

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/theplant/pagequery"
)

// strictJSON rejects fields the target type does not declare, so a misspelled filter
// operator is reported instead of silently ignored.
var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// parsePaginateRequest reads page, perPage, sort and filter from the query string.
// sort may be repeated or comma separated; filter is a JSON object.
func parsePaginateRequest[F any](c *gin.Context) (*pagequery.PaginateRequest[F], error) {
	req := &pagequery.PaginateRequest[F]{}

	var err error
	if req.Page, err = queryInt(c, "page"); err != nil {
		return nil, err
	}
	if req.PerPage, err = queryInt(c, "perPage"); err != nil {
		return nil, err
	}

	for _, v := range c.QueryArray("sort") {
		for _, directive := range strings.Split(v, ",") {
			if directive = strings.TrimSpace(directive); directive != "" {
				req.Sort = append(req.Sort, pagequery.SortDirective(directive))
			}
		}
	}

	if raw := strings.TrimSpace(c.Query("filter")); raw != "" {
		var f F
		if err := strictJSON.UnmarshalFromString(raw, &f); err != nil {
			return nil, pagequery.NewValidationError("filter", "malformed filter: %s", err.Error())
		}
		req.Filter = &f
	}
	return req, nil
}

func queryInt(c *gin.Context, key string) (*int, error) {
	v, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil, pagequery.NewValidationError(key, "must be an integer, got %q", v)
	}
	return &n, nil
}

func decodeBody(c *gin.Context, v any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return pagequery.NewValidationError("body", "unreadable body: %s", err.Error())
	}
	if err := strictJSON.Unmarshal(body, v); err != nil {
		return pagequery.NewValidationError("body", "malformed JSON: %s", err.Error())
	}
	return nil
}
