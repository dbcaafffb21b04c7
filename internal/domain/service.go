package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceName identifies a tracked service. The set is closed: records are
// seeded once at startup and never created or deleted afterwards.
type ServiceName string

const (
	Zadarma            ServiceName = "zadarma"
	DIDWW              ServiceName = "didww"
	Streamtele         ServiceName = "streamtele"
	Callii             ServiceName = "callii"
	WazzupSubscription ServiceName = "wazzup_subscription"
	WazzupBalance      ServiceName = "wazzup_balance"
)

// AllServices lists every tracked service in display order.
var AllServices = []ServiceName{
	Zadarma,
	DIDWW,
	Streamtele,
	Callii,
	WazzupSubscription,
	WazzupBalance,
}

// Valid reports whether the name is part of the catalog.
func (n ServiceName) Valid() bool {
	_, ok := Catalog[n]
	return ok
}

// Currency is the display currency of a service balance.
type Currency string

const (
	USD Currency = "USD"
	RUB Currency = "RUB"
	UAH Currency = "UAH"
)

// Sign returns the display symbol for the currency.
func (c Currency) Sign() string {
	switch c {
	case USD:
		return "$"
	case RUB:
		return "₽"
	case UAH:
		return "₴"
	default:
		return string(c)
	}
}

// BillingMode describes how a service is paid for, which in turn decides
// which due-date field its record carries.
type BillingMode int

const (
	// BillingAPIOnly services are monitored purely through balance polling.
	BillingAPIOnly BillingMode = iota
	// BillingDaily services burn a fixed daily cost; their due date advances
	// only when the operator reports a top-up.
	BillingDaily
	// BillingMonthly services charge a fixed fee on a target day of month;
	// their due date advances automatically each time it fires.
	BillingMonthly
)

// ServiceSpec is the static catalog entry for one service: billing mode,
// money constants and conversation wiring. Costs and fees hold the defaults;
// configuration may override them at seed time.
type ServiceSpec struct {
	Name        ServiceName
	DisplayName string
	Currency    Currency

	Billing    BillingMode
	HasAPI     bool
	DailyCost  decimal.Decimal
	MonthlyFee decimal.Decimal

	// TargetDay is the day of month a monthly fee is due. Zero otherwise.
	TargetDay int

	// AckToken is the callback token attached to daily reminders; pressing
	// it opens the payment capture conversation. Empty for other modes.
	AckToken string
	AckLabel string
}

// Catalog maps every service to its static spec.
var Catalog = map[ServiceName]ServiceSpec{
	Zadarma: {
		Name:        Zadarma,
		DisplayName: "Zadarma",
		Currency:    USD,
		Billing:     BillingAPIOnly,
		HasAPI:      true,
	},
	DIDWW: {
		Name:        DIDWW,
		DisplayName: "DIDWW",
		Currency:    USD,
		Billing:     BillingMonthly,
		HasAPI:      true,
		MonthlyFee:  decimal.NewFromInt(45),
		TargetDay:   20,
	},
	Streamtele: {
		Name:        Streamtele,
		DisplayName: "Streamtele",
		Currency:    UAH,
		Billing:     BillingMonthly,
		MonthlyFee:  decimal.NewFromInt(1500),
		TargetDay:   11,
	},
	Callii: {
		Name:        Callii,
		DisplayName: "Callii",
		Currency:    USD,
		Billing:     BillingDaily,
		DailyCost:   decimal.NewFromFloat(2.2),
		AckToken:    "callii_paid",
		AckLabel:    "Paid",
	},
	WazzupSubscription: {
		Name:        WazzupSubscription,
		DisplayName: "Wazzup24 Subscription",
		Currency:    RUB,
		Billing:     BillingMonthly,
		MonthlyFee:  decimal.NewFromInt(6000),
		TargetDay:   11,
	},
	WazzupBalance: {
		Name:        WazzupBalance,
		DisplayName: "Wazzup24 Number Balance",
		Currency:    RUB,
		Billing:     BillingDaily,
		DailyCost:   decimal.NewFromInt(400),
		AckToken:    "wazzup_paid",
		AckLabel:    "Topped up",
	},
}

// SpecByAckToken resolves a callback token back to its service spec.
func SpecByAckToken(token string) (ServiceSpec, bool) {
	for _, spec := range Catalog {
		if spec.AckToken != "" && spec.AckToken == token {
			return spec, true
		}
	}
	return ServiceSpec{}, false
}

// ServiceRecord is the persisted, mutable state of one tracked service.
//
// Exactly one of NextAlertDate / NextMonthlyAlert is set, or neither: a
// service is daily-cycle, monthly-cycle, or purely API-polled.
type ServiceRecord struct {
	Name                ServiceName
	Currency            Currency
	LastBalance         decimal.Decimal
	LowBalanceAlertSent bool
	DailyCost           decimal.Decimal
	MonthlyFee          decimal.Decimal
	NextAlertDate       *time.Time
	NextMonthlyAlert    *time.Time
	UpdatedAt           time.Time
}

// Spec returns the catalog entry for the record's service.
func (r *ServiceRecord) Spec() ServiceSpec {
	return Catalog[r.Name]
}

// Validate checks the due-date exclusivity invariant.
func (r *ServiceRecord) Validate() error {
	if !r.Name.Valid() {
		return ErrServiceNotFound
	}
	if r.NextAlertDate != nil && r.NextMonthlyAlert != nil {
		return ErrConflictingSchedules
	}
	return nil
}
