package commands

import (
	"encoding/json"
	"io"
	"math"

	"github.com/shopspring/decimal"

	"github.com/meenmo/credlib/pricing"
)

// Currency amounts are rounded to cents, prices and rates to 8 decimals.
const (
	moneyPlaces = 2
	ratePlaces  = 8
)

func money(v float64) decimal.Decimal { return round(v, moneyPlaces) }
func rate(v float64) decimal.Decimal  { return round(v, ratePlaces) }

// round maps non-finite values to zero; decimal cannot represent them.
func round(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(places)
}

// PriceOutput is one line of `creditpv price` and `creditpv basket`.
type PriceOutput struct {
	ID             string           `json:"id"`
	Type           string           `json:"type"`
	ProtectionPv   decimal.Decimal  `json:"protection_pv"`
	FeePv          decimal.Decimal  `json:"fee_pv"`
	Accrued        decimal.Decimal  `json:"accrued"`
	Pv             decimal.Decimal  `json:"pv"`
	FlatPrice      decimal.Decimal  `json:"flat_price"`
	FullModelPrice decimal.Decimal  `json:"full_model_price"`
	ExpectedLoss   *decimal.Decimal `json:"expected_loss,omitempty"`
}

func priceOutput(id, typ string, r pricing.Result) PriceOutput {
	return PriceOutput{
		ID:             id,
		Type:           typ,
		ProtectionPv:   money(r.ProtectionPv),
		FeePv:          money(r.FeePv),
		Accrued:        money(r.Accrued),
		Pv:             money(r.Pv()),
		FlatPrice:      rate(r.FlatPrice()),
		FullModelPrice: rate(r.FullModelPrice()),
	}
}

// ErrorOutput reports a trade that could not be valued.
type ErrorOutput struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Error string `json:"error"`
}

func writeLine(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
