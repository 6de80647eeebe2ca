package utils

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var packageNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,63}$`)

func init() {
	validate = validator.New()

	err := validate.RegisterValidation("package_name", validatePackageName)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("platform_date", validatePlatformDate)
	if err != nil {
		return
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validatePackageName(fl validator.FieldLevel) bool {
	return packageNameRe.MatchString(fl.Field().String())
}

// validatePlatformDate accepts the platform's yyyy-MM-dd date filters.
func validatePlatformDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}
