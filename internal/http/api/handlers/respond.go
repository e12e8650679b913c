package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/playerfinder/playerfinder/internal/apperr"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/playerfinder/playerfinder/internal/sessions"
	"github.com/playerfinder/playerfinder/internal/validate"
	log "github.com/sirupsen/logrus"
)

const (
	ctxUserKey    = "user"
	ctxTokenIDKey = "tokenID"
)

// SetPrincipal stores the authenticated caller on the request context.
func SetPrincipal(c *gin.Context, principal *sessions.Principal) {
	c.Set(ctxUserKey, principal.User)
	c.Set(ctxTokenIDKey, principal.TokenID)
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func currentUserID(c *gin.Context) uint64 {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

func currentTokenID(c *gin.Context) string {
	return c.GetString(ctxTokenIDKey)
}

// RenderError writes err as the JSON error envelope and aborts the chain.
func RenderError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok || apperr.StatusOf(err) >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("api: request failed")
		appErr = apperr.Internal("internal server error")
	}

	body := gin.H{
		"status":  appErr.Status,
		"message": appErr.Message,
	}
	if appErr.Code != "" {
		body["code"] = appErr.Code
	}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	c.AbortWithStatusJSON(appErr.Status, body)
}

// bindJSON decodes the request body and renders a 400/422 on failure.
func bindJSON(c *gin.Context, dest any) bool {
	if errBind := c.ShouldBindJSON(dest); errBind != nil {
		RenderError(c, translateBindError(errBind))
		return false
	}
	return true
}

func translateBindError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]apperr.FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, apperr.FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: validate.Message(fe.Field(), fe.Tag(), fe.Param(), fe.Kind()),
			})
		}
		return apperr.Validation(fields, "validation failed")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.BadRequest("request body is required")
	case errors.As(err, &syntaxErr):
		return apperr.BadRequest("malformed json body")
	case errors.As(err, &typeErr):
		return apperr.Validation([]apperr.FieldError{{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.String()),
		}}, "validation failed")
	default:
		return apperr.BadRequest("invalid request body").Wrap(err)
	}
}

// parseID reads a numeric path parameter. Unparseable ids render a 404 for the named resource.
func parseID(c *gin.Context, param, resource string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(param)), 10, 64)
	if errParse != nil || id == 0 {
		RenderError(c, apperr.NotFound("%s not found", resource))
		return 0, false
	}
	return id, true
}

// JSONTagName makes validator report json field names instead of Go field names.
func JSONTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
