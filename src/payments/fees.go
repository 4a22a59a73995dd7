package payments

import (
	"huletfish/src/models"
	"huletfish/src/types"

	"github.com/shopspring/decimal"
)

type GatewayRate struct {
	Percent decimal.Decimal
	Fixed   decimal.Decimal
}

type FeeSchedule struct {
	PlatformPercent decimal.Decimal
	Gateways        map[types.PaymentMethod]GatewayRate
}

type Fees struct {
	PlatformFee float64
	GatewayFee  float64
	TotalFees   float64
	TotalAmount float64
}

func (f Fees) Model() models.PaymentFees {
	return models.PaymentFees{
		PlatformFee: f.PlatformFee,
		GatewayFee:  f.GatewayFee,
		TotalFees:   f.TotalFees,
	}
}

func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		PlatformPercent: decimal.RequireFromString("0.05"),
		Gateways: map[types.PaymentMethod]GatewayRate{
			types.PAYMENT_METHOD_STRIPE: {
				Percent: decimal.RequireFromString("0.029"),
				Fixed:   decimal.RequireFromString("0.30"),
			},
			types.PAYMENT_METHOD_CHAPA: {
				Percent: decimal.RequireFromString("0.025"),
			},
		},
	}
}

// Calculate prices a charge of amount through method. A method without a
// configured rate carries no gateway fee.
func (f FeeSchedule) Calculate(amount float64, method types.PaymentMethod) Fees {
	base := decimal.NewFromFloat(amount).Round(2)
	platform := base.Mul(f.PlatformPercent).Round(2)
	gateway := decimal.Zero
	if rate, ok := f.Gateways[method]; ok {
		gateway = base.Mul(rate.Percent).Add(rate.Fixed).Round(2)
	}
	total := platform.Add(gateway)
	return Fees{
		PlatformFee: platform.InexactFloat64(),
		GatewayFee:  gateway.InexactFloat64(),
		TotalFees:   total.InexactFloat64(),
		TotalAmount: base.Add(total).InexactFloat64(),
	}
}
