package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks struct tags and maps violations to a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var sb strings.Builder
		for _, fe := range err.(validator.ValidationErrors) {
			if sb.Len() > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()))
		}
		return fiber.NewError(fiber.StatusBadRequest, sb.String())
	}
	return nil
}
