package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// bindBody decodes and validates the JSON body into T and trims its string
// fields. On failure it writes a REQ_001 response and reports false.
func bindBody[T any](c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return req, false
	}
	dto.SanitizeStruct(&req)
	return req, true
}

// bindQuery is bindBody for query strings.
func bindQuery[T any](c *gin.Context) (T, bool) {
	var q T
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return q, false
	}
	return q, true
}
