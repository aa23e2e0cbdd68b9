package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"taskapi/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// 共有のバリデーターインスタンス
var validate = validator.New()

// errorJSON はエラーレスポンスを返す
func errorJSON(c echo.Context, code int, message, detail string) error {
	return c.JSON(code, models.ErrorResponse{
		Error:      message,
		Detail:     detail,
		StatusCode: code,
	})
}

// validationError は 422 を返す
func validationError(c echo.Context, detail string) error {
	return errorJSON(c, http.StatusUnprocessableEntity, "Validation Error", detail)
}

// notFound は 404 を返す
func notFound(c echo.Context, detail string) error {
	return errorJSON(c, http.StatusNotFound, "Not Found", detail)
}

// internalError は 500 を返す
func internalError(c echo.Context, err error) error {
	return errorJSON(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
}

// validationDetail はフィールド単位のエラーメッセージを組み立てる
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s: failed on '%s'", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
