package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/fleetcn/pkg/errors"
	"github.com/charlesng35/fleetcn/pkg/response"
	appValidator "github.com/charlesng35/fleetcn/pkg/validator"
)

// bindAndValidate decodes the JSON body into dest and applies its validate tags. On failure
// it writes a 400 and returns false.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	err := appValidator.ValidateStruct(dest)
	if err == nil {
		return true
	}
	message := "invalid request payload"
	var failures appValidator.ValidationErrors
	if errors.As(err, &failures) && len(failures) > 0 {
		message = failures.Messages()
	}
	response.Error(c, appErrors.NewBadRequest(message))
	return false
}

// parseIntQuery reads an integer query parameter. Absent values yield fallback; malformed
// values are reported as a bad request.
func parseIntQuery(c *gin.Context, key string, fallback int) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, appErrors.NewBadRequest(fmt.Sprintf("%s must be an integer", key))
	}
	return parsed, nil
}

// parseBoolQuery reads an optional boolean query parameter.
func parseBoolQuery(c *gin.Context, key string) (*bool, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, appErrors.NewBadRequest(fmt.Sprintf("%s must be a boolean", key))
	}
	return &parsed, nil
}
