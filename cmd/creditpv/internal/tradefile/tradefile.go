// Package tradefile reads the YAML trade files consumed by creditpv and
// turns them into curves and pricers.
package tradefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meenmo/credlib/utils"
)

// Trade types.
const (
	TypeCDS   = "cds"
	TypeCLN   = "cln"
	TypeIndex = "index"
	TypeNTD   = "ntd"
)

// File is the top-level trade file.
//
// Conventions:
// - rates, hazards, coupons and recoveries are decimals (0.01 means 1%)
// - dates are YYYY-MM-DD
// - tenors are "6M", "1Y", "5Y", ...
type File struct {
	AsOf     string               `yaml:"asof"`
	Settle   string               `yaml:"settle"` // optional, defaults to asof
	Discount DiscountSpec         `yaml:"discount"`
	Curves   map[string]CurveSpec `yaml:"curves"`
	Trades   []Trade              `yaml:"trades"`

	// Holidays lists closing days per calendar id (TARGET, USD, ...). They add
	// to the built-in TARGET closing days.
	Holidays map[string][]string `yaml:"holidays"`
}

// DiscountSpec is a flat continuously compounded rate, a set of discount
// factors keyed by tenor, or par swap rates to bootstrap from.
type DiscountSpec struct {
	FlatRate *float64           `yaml:"flat_rate"`
	Factors  map[string]float64 `yaml:"dfs"`

	SwapRates           map[string]float64 `yaml:"swap_rates"`
	SwapFrequencyMonths int                `yaml:"swap_frequency_months"`
	SwapDayCount        string             `yaml:"swap_day_count"`
	Calendar            string             `yaml:"calendar"`
}

// CurveSpec describes one obligor.
type CurveSpec struct {
	Hazard      *float64           `yaml:"hazard"`
	Hazards     map[string]float64 `yaml:"hazards"`
	Recovery    *float64           `yaml:"recovery"`
	DefaultDate string             `yaml:"default_date"`
	SettleDate  string             `yaml:"settle_date"`
}

// Trade is one position. Which fields apply depends on Type.
type Trade struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`

	// cds / cln
	Reference    string  `yaml:"reference"`
	Counterparty string  `yaml:"counterparty"`
	Correlation  float64 `yaml:"correlation"`

	// index
	Names   []string  `yaml:"names"`
	Weights []float64 `yaml:"weights"`

	// ntd: Orders lists one curve per order statistic, first to last.
	Orders  []string `yaml:"orders"`
	First   int      `yaml:"first"`
	Covered int      `yaml:"covered"`

	Effective           string  `yaml:"effective"`
	Maturity            string  `yaml:"maturity"`
	Coupon              float64 `yaml:"coupon"`
	Notional            float64 `yaml:"notional"`
	FrequencyMonths     int     `yaml:"frequency_months"`
	DayCount            string  `yaml:"day_count"`
	Calendar            string  `yaml:"calendar"`
	SettlementDelayDays int     `yaml:"settlement_delay_days"`
	// IMM rolls coupons on the standard CDS dates.
	IMM bool `yaml:"imm"`

	// TargetPrice is the full model price solved for by the implied commands.
	TargetPrice *float64 `yaml:"target_price"`
	// Price is the clean price used for the yield of a note.
	Price *float64 `yaml:"price"`
}

// Load reads and validates a trade file. Unknown fields are rejected.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tradefile.Load: %w", err)
	}
	f, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("tradefile.Load: %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates trade file content.
func Parse(raw []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	for i := range f.Trades {
		f.Trades[i].Type = strings.ToLower(strings.TrimSpace(f.Trades[i].Type))
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the file layout: dates present, every referenced curve
// defined and trade types known. Trade economics are checked by the pricers.
func (f *File) Validate() error {
	var errs []error
	if f.AsOf == "" {
		errs = append(errs, errors.New("asof is required"))
	}
	switch n := f.Discount.sources(); {
	case n == 0:
		errs = append(errs, errors.New("discount: flat_rate, dfs or swap_rates is required"))
	case n > 1:
		errs = append(errs, errors.New("discount: flat_rate, dfs and swap_rates are exclusive"))
	}
	for name, c := range f.Curves {
		if c.Hazard == nil && len(c.Hazards) == 0 {
			errs = append(errs, fmt.Errorf("curve %s: hazard or hazards is required", name))
		}
		if c.SettleDate != "" && c.DefaultDate == "" {
			errs = append(errs, fmt.Errorf("curve %s: settle_date without default_date", name))
		}
	}
	for cal, days := range f.Holidays {
		for _, d := range days {
			if _, err := utils.ParseDate(d); err != nil {
				errs = append(errs, fmt.Errorf("holidays %s: %w", cal, err))
			}
		}
	}
	seen := make(map[string]bool, len(f.Trades))
	for i, t := range f.Trades {
		id := t.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("trade %s: duplicate id", id))
		}
		seen[id] = true
		for _, ref := range t.curveRefs() {
			if _, ok := f.Curves[ref]; !ok {
				errs = append(errs, fmt.Errorf("trade %s: unknown curve %q", id, ref))
			}
		}
		switch t.Type {
		case TypeCDS, TypeCLN:
			if t.Reference == "" {
				errs = append(errs, fmt.Errorf("trade %s: reference is required", id))
			}
		case TypeIndex:
			if len(t.Names) == 0 {
				errs = append(errs, fmt.Errorf("trade %s: names are required", id))
			}
		case TypeNTD:
			if len(t.Orders) == 0 {
				errs = append(errs, fmt.Errorf("trade %s: orders are required", id))
			}
		default:
			errs = append(errs, fmt.Errorf("trade %s: unknown type %q", id, t.Type))
		}
	}
	return errors.Join(errs...)
}

func (d DiscountSpec) sources() int {
	n := 0
	if d.FlatRate != nil {
		n++
	}
	if len(d.Factors) > 0 {
		n++
	}
	if len(d.SwapRates) > 0 {
		n++
	}
	return n
}

func (t Trade) curveRefs() []string {
	var refs []string
	if t.Reference != "" {
		refs = append(refs, t.Reference)
	}
	if t.Counterparty != "" {
		refs = append(refs, t.Counterparty)
	}
	refs = append(refs, t.Names...)
	return append(refs, t.Orders...)
}

// Select returns the trades of the given types (all when types is empty).
func (f *File) Select(types ...string) []Trade {
	if len(types) == 0 {
		return f.Trades
	}
	var out []Trade
	for _, t := range f.Trades {
		for _, ty := range types {
			if t.Type == ty {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
