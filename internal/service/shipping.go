package service

import (
	"github.com/shopspring/decimal"
)

// 内置运费默认值
var (
	DefaultFlatShippingFee       = decimal.RequireFromString("14.99")
	DefaultFreeShippingThreshold = decimal.RequireFromString("150.00")
)

// ShippingPolicy 统一运费：小计达到门槛免运费，否则收取固定运费
type ShippingPolicy struct {
	FlatFee       decimal.Decimal
	FreeThreshold decimal.Decimal
	Currency      string
}

// Quote 计算运费与应付总额
func (p ShippingPolicy) Quote(subtotal decimal.Decimal) (shipping decimal.Decimal, total decimal.Decimal) {
	shipping = p.FlatFee
	if subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		shipping = decimal.Zero
	}
	return shipping, subtotal.Add(shipping)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
