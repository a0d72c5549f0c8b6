package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
)

var sqlIdentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var validate = newValidator()

// newValidator reports fields by their koanf key so messages name the
// setting an operator has to change.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdentPattern.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(validateDatabase, DatabaseConfig{})

	return v
}

// validateDatabase holds the checks spanning several database fields.
func validateDatabase(sl validator.StructLevel) {
	db, ok := sl.Current().Interface().(DatabaseConfig)
	if !ok {
		return
	}

	if db.MaxIdleConns > db.MaxOpenConns {
		sl.ReportError(db.MaxIdleConns, "max_idle_conns", "MaxIdleConns", "ltefield", "max_open_conns")
	}

	if db.DSN != "" && checkDSN(db.Driver, db.DSN) != nil {
		sl.ReportError(db.DSN, "dsn", "DSN", "dsn", db.Driver)
	}
}

// checkDSN parses dsn with the driver's own parser. The DSN itself never
// reaches the returned error text.
func checkDSN(driver, dsn string) error {
	var err error

	switch driver {
	case "mysql":
		_, err = mysql.ParseDSN(dsn)
	case "postgres":
		_, err = pgx.ParseConfig(dsn)
	}

	if err != nil {
		return errors.New("unparseable " + driver + " DSN")
	}

	return nil
}

// Validate fails fast: the service must not start with invalid config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	case "sqlident":
		return field + " may only contain letters, digits and underscores"
	case "dsn":
		return fmt.Sprintf("%s is not a valid %s DSN", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath drops the root struct name: "Config.server.port" becomes
// "server.port".
func formatFieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return strings.ToLower(namespace)
	}

	return strings.ToLower(path)
}
