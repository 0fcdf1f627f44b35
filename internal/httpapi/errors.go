package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

// respondError maps the domain error taxonomy onto HTTP. NotAuthorized is
// deliberately rendered as a 404 order_not_found so an actor probing other
// actors' order IDs cannot learn which ones exist.
func respondError(c *gin.Context, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		logrus.WithError(err).Error("unclassified error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal error"})
		return
	}

	status := statusForCode(appErr.Code)
	if appErr.Code == domain.CodeNotAuthorized {
		c.JSON(status, gin.H{"error": "order_not_found", "message": "order not found"})
		return
	}
	if appErr.Code == domain.CodePersistence {
		logrus.WithError(appErr).Error("persistence failure")
		c.JSON(status, gin.H{"error": appErr.Name, "message": "persistence failure"})
		return
	}

	body := gin.H{"error": appErr.Name, "message": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(status, body)
}

func statusForCode(code int) int {
	switch code {
	case domain.CodeEmptyOrder, domain.CodeInvalidQuantity:
		return http.StatusBadRequest
	case domain.CodeProductNotFound, domain.CodeOrderNotFound, domain.CodeCategoryNotFound:
		return http.StatusNotFound
	case domain.CodeInsufficientStock, domain.CodeDuplicateCategory:
		return http.StatusConflict
	case domain.CodeAlreadyShipped, domain.CodeAlreadyCancelled,
		domain.CodeCannotShipCancelled, domain.CodeShippedCancelNeedsReason:
		return http.StatusConflict
	case domain.CodeNotAuthorized:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
