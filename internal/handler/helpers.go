package handler

import (
	"net/http"
	"reflect"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/apierror"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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

// statusFor fixes the HTTP status for each domain error variant. The set is
// closed: an unknown kind falls back to 400 with the raw message.
func statusFor(kind string) int {
	switch kind {
	case "table_not_found", "product_not_found":
		return http.StatusNotFound
	case "session_conflict", "insufficient_stock":
		return http.StatusConflict
	case "recipe_not_found", "already_canceled", "already_prepared", "cannot_cancel_prepared_items":
		return http.StatusUnprocessableEntity
	case "transaction_timeout":
		return http.StatusServiceUnavailable
	case "data_integrity":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// writeError translates a service error into the canonical envelope.
func writeError(c *gin.Context, err error) {
	kind := service.Kind(err)
	if kind == "" {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(statusFor(kind), apierror.NewKind(kind, err.Error(), errorContext(err)))
}

// errorContext extracts the fixed payload of each variant so clients can act
// on ids and quantities without parsing Detail.
func errorContext(err error) map[string]interface{} {
	switch e := err.(type) {
	case *service.TableNotFoundError:
		return map[string]interface{}{"table_number": e.Number}
	case *service.ProductNotFoundError:
		return map[string]interface{}{"product_id": e.ProductID.String()}
	case *service.RecipeNotFoundError:
		return map[string]interface{}{"product_id": e.ProductID.String()}
	case *service.SessionConflictError:
		return map[string]interface{}{
			"session_id":            e.SessionID.String(),
			"table_id":              e.MesaID.String(),
			"existing_client_token": e.ExistingClientToken,
		}
	case *service.InsufficientStockError:
		return map[string]interface{}{
			"product_id": e.ProductID.String(),
			"required":   e.Required.String(),
			"available":  e.Available.String(),
		}
	case *service.AlreadyCanceledError:
		return map[string]interface{}{"item_id": e.ItemID.String()}
	case *service.AlreadyPreparedError:
		return map[string]interface{}{"item_id": e.ItemID.String()}
	case *service.CannotCancelPreparedItemsError:
		return map[string]interface{}{
			"order_id":       e.OrderID.String(),
			"prepared_count": e.PreparedCount,
		}
	default:
		return nil
	}
}
