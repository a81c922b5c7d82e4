package money

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidCurrency = errors.New("currency must be a three-letter ISO 4217 code")

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

type Currency string

func NewCurrency(code string) (Currency, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !currencyRegex.MatchString(code) {
		return Currency(""), ErrInvalidCurrency
	}
	return Currency(code), nil
}

func (c Currency) String() string {
	return string(c)
}
