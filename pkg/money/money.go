// Package money 提供十进制金额与最小货币单位（整数）之间的精确转换
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxScale 支持的最大小数位数
const MaxScale = 8

var (
	// ErrPrecision 金额的小数位超过币种精度
	ErrPrecision = errors.New("money: precision exceeds scale")
	// ErrOutOfRange 金额超出 int64 最小单位的表示范围
	ErrOutOfRange = errors.New("money: amount out of range")
	// ErrScale 非法精度
	ErrScale = errors.New("money: invalid scale")
)

// ValidateScale 校验精度
func ValidateScale(scale int32) error {
	if scale < 0 || scale > MaxScale {
		return fmt.Errorf("%w: %d (want 0..%d)", ErrScale, scale, MaxScale)
	}
	return nil
}

// Parse 把十进制金额字符串（如 "500.00"）转为最小货币单位
func Parse(s string, scale int32) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	minor, err := FromDecimal(d, scale)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	return minor, nil
}

// FromDecimal 十进制金额转最小货币单位，不允许舍入
func FromDecimal(d decimal.Decimal, scale int32) (int64, error) {
	if err := ValidateScale(scale); err != nil {
		return 0, err
	}
	minor := d.Shift(scale)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: more than %d fractional digits", ErrPrecision, scale)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: exceeds int64 at scale %d", ErrOutOfRange, scale)
	}
	return minor.IntPart(), nil
}

// ToDecimal 最小货币单位转十进制金额
func ToDecimal(minor int64, scale int32) decimal.Decimal {
	return decimal.New(minor, -scale)
}

// Format 按精度输出定点金额，如 42500, 2 -> "425.00"
func Format(minor int64, scale int32) string {
	return ToDecimal(minor, scale).StringFixed(scale)
}
