package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/ArapCheruiyot/superkeeper/internal/apierror"
	"github.com/ArapCheruiyot/superkeeper/internal/middleware"
	"github.com/ArapCheruiyot/superkeeper/internal/service"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// shopID extracts the authenticated shop identity set by ShopAuth.
func shopID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.ShopID)
	return id
}

// deviceID scopes session state per device; one shop can run several.
func deviceID(c *gin.Context) string {
	if d := c.GetHeader("X-Device-ID"); d != "" {
		return d
	}
	return "default"
}

// writeError maps service and session errors onto HTTP statuses. State
// conflicts (busy guards, overlay guards, duplicates) are 409s; everything
// unrecognized falls back to 400 so handlers stay thin.
func writeError(c *gin.Context, err error) {
	var partial *service.PartialSaleError
	var dup *service.DuplicateNameError
	switch {
	case errors.As(err, &partial):
		c.JSON(http.StatusConflict, gin.H{
			"detail":     partial.Error(),
			"receipt_id": partial.ReceiptID,
			"committed":  partial.Committed,
			"failed":     partial.Failed,
		})
	case errors.As(err, &dup):
		// The holder's id lets the client offer a rename instead of a dead end.
		c.JSON(http.StatusConflict, gin.H{
			"detail":      dup.Error(),
			"existing_id": dup.ExistingID,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrCategoryHasItems),
		errors.Is(err, service.ErrCategoryNotLeaf),
		errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrCaptureInProgress),
		errors.Is(err, session.ErrCaptureNotActive),
		errors.Is(err, session.ErrWrongSlot),
		errors.Is(err, session.ErrNotCategoriesOpen),
		errors.Is(err, session.ErrNoItemOpen),
		errors.Is(err, session.ErrNotEditing):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}

func sessionState(sess *session.Session) gin.H {
	snap := sess.Snap()
	return gin.H{
		"state":         string(snap.State),
		"capture_phase": string(snap.CapturePhase),
		"edit_mode":     snap.EditMode,
		"cart_count":    snap.CartCount,
		"camera_open":   snap.CameraOpen,
	}
}
