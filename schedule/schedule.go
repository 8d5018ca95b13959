package schedule

import (
	"errors"
	"sort"
	"time"
)

// PaymentSchedule is an immutable sequence of payments sorted by pay date.
type PaymentSchedule struct {
	payments []Payment
}

// NewPaymentSchedule sorts payments stably by pay date. Nil entries are rejected.
func NewPaymentSchedule(payments ...Payment) (*PaymentSchedule, error) {
	ps := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p == nil {
			return nil, errors.New("NewPaymentSchedule: nil payment")
		}
		ps = append(ps, p)
	}
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].PayDate().Before(ps[j].PayDate()) })
	return &PaymentSchedule{payments: ps}, nil
}

// Len returns the number of payments.
func (s *PaymentSchedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.payments)
}

// Payments returns a copy of the payments in pay-date order.
func (s *PaymentSchedule) Payments() []Payment {
	if s == nil {
		return nil
	}
	return append([]Payment(nil), s.payments...)
}

// Filter returns the payments of the given kinds.
func (s *PaymentSchedule) Filter(kinds ...Kind) *PaymentSchedule {
	return s.where(func(p Payment) bool {
		for _, k := range kinds {
			if p.Kind() == k {
				return true
			}
		}
		return false
	})
}

// Between returns the payments with from <= PayDate <= to.
func (s *PaymentSchedule) Between(from, to time.Time) *PaymentSchedule {
	return s.where(func(p Payment) bool {
		d := p.PayDate()
		return !d.Before(from) && !d.After(to)
	})
}

func (s *PaymentSchedule) where(keep func(Payment) bool) *PaymentSchedule {
	out := &PaymentSchedule{}
	if s == nil {
		return out
	}
	for _, p := range s.payments {
		if keep(p) {
			out.payments = append(out.payments, p)
		}
	}
	return out
}

// Of returns the payments of concrete type T, in order.
func Of[T Payment](s *PaymentSchedule) []T {
	if s == nil {
		return nil
	}
	var out []T
	for _, p := range s.payments {
		if v, ok := p.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func (s *PaymentSchedule) Interest() []InterestPayment     { return Of[InterestPayment](s) }
func (s *PaymentSchedule) Protection() []ProtectionPayment { return Of[ProtectionPayment](s) }
func (s *PaymentSchedule) Principal() []PrincipalExchange  { return Of[PrincipalExchange](s) }

// DefaultSettlement returns the first default settlement, if any.
func (s *PaymentSchedule) DefaultSettlement() (DefaultSettlement, bool) {
	ds := Of[DefaultSettlement](s)
	if len(ds) == 0 {
		return DefaultSettlement{}, false
	}
	return ds[0], true
}
