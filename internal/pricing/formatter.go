package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	USD Currency = "USD"
	VES Currency = "VES"
)

// 表示用の BCV レート（USD→VES）。ライブ取得はしない。
var DefaultBCVRate = decimal.RequireFromString("45.00")

var ErrUnknownCurrency = errors.New("unknown currency")

// ParseCurrency は "usd" / "VES" などを受け付ける。
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case USD:
		return USD, nil
	case VES:
		return VES, nil
	default:
		return "", ErrUnknownCurrency
	}
}

// Formatter は USD 金額を表示用文字列にする。
type Formatter struct {
	rate decimal.Decimal
}

func NewFormatter(rate decimal.Decimal) Formatter {
	return Formatter{rate: rate}
}

func (f Formatter) Rate() decimal.Decimal {
	return f.rate
}

func (f Formatter) ToVES(amountUSD decimal.Decimal) decimal.Decimal {
	return amountUSD.Mul(f.rate)
}

// "$10.00"
func (f Formatter) FormatUSD(amountUSD decimal.Decimal) string {
	return "$" + amountUSD.StringFixed(2)
}

// "Bs. 450.00"
func (f Formatter) FormatVES(amountUSD decimal.Decimal) string {
	return "Bs. " + f.ToVES(amountUSD).StringFixed(2)
}

func (f Formatter) Format(amountUSD decimal.Decimal, c Currency) string {
	if c == VES {
		return f.FormatVES(amountUSD)
	}
	return f.FormatUSD(amountUSD)
}
