package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate binds the JSON body into obj and validates it. On failure
// it writes a 400 and returns the error; the handler should just return.
func BindAndValidate(c *gin.Context, obj any, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return err
	}
	if err := v.Struct(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
		return err
	}
	return nil
}
