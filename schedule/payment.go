// Package schedule models the payment obligations of a credit product and
// generates CDS-style premium schedules.
package schedule

import (
	"fmt"
	"time"

	"github.com/meenmo/credlib/utils"
)

// Kind tags the concrete type of a Payment.
type Kind int

const (
	KindInterest Kind = iota
	KindProtection
	KindDefaultSettlement
	KindPrincipal
)

func (k Kind) String() string {
	switch k {
	case KindInterest:
		return "Interest"
	case KindProtection:
		return "Protection"
	case KindDefaultSettlement:
		return "DefaultSettlement"
	case KindPrincipal:
		return "Principal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Payment is one obligation in a schedule.
type Payment interface {
	Kind() Kind
	PayDate() time.Time
	AccrualStart() time.Time
	AccrualEnd() time.Time
	// Amount is the scheduled cash amount, before any credit contingency.
	Amount() float64
}

// InterestPayment is a fixed premium coupon accruing over [Start, End].
type InterestPayment struct {
	Start    time.Time
	End      time.Time
	Pay      time.Time
	Coupon   float64 // decimal, 0.01 = 100bp
	Notional float64
	DayCount string
}

func (p InterestPayment) Kind() Kind              { return KindInterest }
func (p InterestPayment) PayDate() time.Time      { return p.Pay }
func (p InterestPayment) AccrualStart() time.Time { return p.Start }
func (p InterestPayment) AccrualEnd() time.Time   { return p.End }

// Amount is Notional * Coupon * yf(Start, End).
func (p InterestPayment) Amount() float64 {
	return p.Notional * p.Coupon * p.AccrualFactor(p.Start, p.End)
}

// AccrualFactor is the year fraction between two dates under the payment's day count.
func (p InterestPayment) AccrualFactor(from, to time.Time) float64 {
	if !to.After(from) {
		return 0
	}
	return utils.YearFraction(from, to, p.DayCount)
}

// AccruedAt is the coupon accrued from Start to t, capped at the full period.
func (p InterestPayment) AccruedAt(t time.Time) float64 {
	if t.After(p.End) {
		t = p.End
	}
	return p.Notional * p.Coupon * p.AccrualFactor(p.Start, t)
}

// Contains reports whether t falls in the accrual period [Start, End).
func (p InterestPayment) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// ProtectionPayment covers default losses on Notional over [Start, End].
type ProtectionPayment struct {
	Start    time.Time
	End      time.Time
	Pay      time.Time
	Notional float64
}

func (p ProtectionPayment) Kind() Kind              { return KindProtection }
func (p ProtectionPayment) PayDate() time.Time      { return p.Pay }
func (p ProtectionPayment) AccrualStart() time.Time { return p.Start }
func (p ProtectionPayment) AccrualEnd() time.Time   { return p.End }
func (p ProtectionPayment) Amount() float64         { return p.Notional }

// DefaultSettlement records the crystallized amounts of a default that has
// already happened: coupon accrued up to the default, the recovery and the
// loss, all paid on Pay.
type DefaultSettlement struct {
	PeriodStart    time.Time
	Default        time.Time
	Pay            time.Time
	AccrualAmount  float64
	RecoveryAmount float64
	LossAmount     float64
}

func (p DefaultSettlement) Kind() Kind              { return KindDefaultSettlement }
func (p DefaultSettlement) PayDate() time.Time      { return p.Pay }
func (p DefaultSettlement) AccrualStart() time.Time { return p.PeriodStart }
func (p DefaultSettlement) AccrualEnd() time.Time   { return p.Default }

// Amount is the cash a note holder receives: recovery plus accrued coupon.
func (p DefaultSettlement) Amount() float64 { return p.RecoveryAmount + p.AccrualAmount }

// Settled reports whether the settlement has been paid by t.
func (p DefaultSettlement) Settled(t time.Time) bool { return !p.Pay.After(t) }

// PrincipalExchange is a notional flow, e.g. a funded note's redemption.
type PrincipalExchange struct {
	Pay      time.Time
	Notional float64
}

func (p PrincipalExchange) Kind() Kind              { return KindPrincipal }
func (p PrincipalExchange) PayDate() time.Time      { return p.Pay }
func (p PrincipalExchange) AccrualStart() time.Time { return p.Pay }
func (p PrincipalExchange) AccrualEnd() time.Time   { return p.Pay }
func (p PrincipalExchange) Amount() float64         { return p.Notional }
