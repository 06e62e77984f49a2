package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/theplant/pagequery"
)

func listHandler[T, F any](list func(ctx context.Context, req *pagequery.PaginateRequest[F]) (*pagequery.PaginatedResponse[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := parsePaginateRequest[F](c)
		if err != nil {
			writeError(c, err)
			return
		}
		rsp, err := list(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsp)
	}
}

// Mutations answer 200 with the envelope for expected failures too; only malformed
// bodies and storage failures change the status.
func createHandler[T, I any](create func(ctx context.Context, in *I) (*pagequery.MutationResponse[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := new(I)
		if err := decodeBody(c, in); err != nil {
			writeError(c, err)
			return
		}
		rsp, err := create(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsp)
	}
}

func updateHandler[T, I any](update func(ctx context.Context, id string, in *I) (*pagequery.MutationResponse[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := new(I)
		if err := decodeBody(c, in); err != nil {
			writeError(c, err)
			return
		}
		rsp, err := update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rsp)
	}
}

func writeError(c *gin.Context, err error) {
	var verr *pagequery.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}
	loggerFrom(c).WithError(err).Error("handle request")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
