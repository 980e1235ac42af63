package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var amountPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Amount is a decimal literal. It is carried as text from the numeric column
// to the snapshot so no digits are lost or rounded on the way.
type Amount string

// ParseAmount validates a plain decimal literal such as "1500", "75.50" or
// "-3.125".
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("amount is required")
	}
	if !amountPattern.MatchString(s) {
		return "", fmt.Errorf("amount %q is not a decimal number", s)
	}
	return Amount(s), nil
}

func (a Amount) String() string {
	return string(a)
}

func (a Amount) Validate() error {
	_, err := ParseAmount(string(a))
	return err
}

// Scan accepts the representations database/sql drivers use for numeric.
func (a *Amount) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case nil:
		return errors.New("amount is null")
	case string:
		text = v
	case []byte:
		text = string(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("unsupported amount type %T", src)
	}
	parsed, err := ParseAmount(text)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return string(a), nil
}
