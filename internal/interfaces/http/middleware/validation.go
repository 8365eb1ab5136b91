package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/marketplace/portal/internal/domain/onboarding"
	"github.com/marketplace/portal/internal/interfaces/http/dto"
)

// RequestIDKey is the header carrying the request ID
const RequestIDKey = "X-Request-ID"

var setupOnce sync.Once

// portalValidations are the identifier tags used by request DTOs
var portalValidations = map[string]validator.Func{
	"in_phone": func(fl validator.FieldLevel) bool {
		return onboarding.IsValidPhone(onboarding.NormalizePhone(fl.Field().String()))
	},
	"pan": func(fl validator.FieldLevel) bool {
		return onboarding.IsValidPAN(upper(fl))
	},
	"gstin": func(fl validator.FieldLevel) bool {
		return onboarding.IsValidGSTIN(upper(fl))
	},
	"pincode": func(fl validator.FieldLevel) bool {
		return onboarding.IsValidPincode(strings.TrimSpace(fl.Field().String()))
	},
	"aadhaar": func(fl validator.FieldLevel) bool {
		return onboarding.IsValidAadhaar(strings.ReplaceAll(fl.Field().String(), " ", ""))
	},
	"ifsc": func(fl validator.FieldLevel) bool {
		return onboarding.IsValidIFSC(upper(fl))
	},
	"otp4": func(fl validator.FieldLevel) bool {
		return onboarding.ValidateOTP(onboarding.OTPMobile, fl.Field().String()) == nil
	},
	"otp6": func(fl validator.FieldLevel) bool {
		return onboarding.ValidateOTP(onboarding.OTPAadhaar, fl.Field().String()) == nil
	},
}

func upper(fl validator.FieldLevel) string {
	return strings.ToUpper(strings.TrimSpace(fl.Field().String()))
}

// SetupValidator configures gin's validator: json names in errors and the
// identifier tags. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		for tag, fn := range portalValidations {
			_ = v.RegisterValidation(tag, fn)
		}
	})
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	message := "Request validation failed"
	if len(details) > 0 {
		message = details[0].Message
	}
	return dto.NewValidationErrorResponse(message, requestID, details)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestIDFromContext(c)))
}

// getRequestIDFromContext extracts request ID from gin context
func getRequestIDFromContext(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please enter a valid email address"
	case "in_phone":
		return "Please enter a valid 10-digit mobile number"
	case "pan":
		return "Please enter a valid PAN, for example ABCDE1234F"
	case "gstin":
		return "Please enter a valid 15-character GSTIN"
	case "pincode":
		return "Please enter a valid 6-digit pincode"
	case "aadhaar":
		return "Please enter a valid 12-digit Aadhaar number"
	case "ifsc":
		return "Please enter a valid IFSC code"
	case "otp4":
		return "OTP must be 4 digits"
	case "otp6":
		return "OTP must be 6 digits"
	case "min":
		if e.Type().Kind() == reflect.String {
			return field + " must be at least " + e.Param() + " characters"
		}
		return field + " must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return field + " must be at most " + e.Param() + " characters"
		}
		return field + " must be at most " + e.Param()
	case "len":
		return field + " must be exactly " + e.Param() + " characters"
	case "uuid":
		return field + " must be a valid id"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "gte":
		return field + " must be greater than or equal to " + e.Param()
	case "gtfield":
		return field + " must be after " + e.Param()
	case "dive":
		return field + " has an invalid entry"
	default:
		return field + " is invalid"
	}
}
