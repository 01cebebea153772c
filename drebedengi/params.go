package drebedengi

import (
	"errors"
	"time"

	"github.com/mishamsk/drebedengi-go/pkg/soap"
)

const dateLayout = "2006-01-02"

// ErrAggregatedNotSupported is returned by GetTransactions when an
// aggregated report is requested. The server supports them but this
// client does not decode report tables.
var ErrAggregatedNotSupported = errors.New("aggregated reports are not supported")

// TransactionsRequest holds the friendly-named getRecordList parameters.
// The zero value asks for the last 20 records of any type.
type TransactionsRequest struct {
	// RelativeDate anchors Period; defaults to now.
	RelativeDate time.Time
	// PeriodFrom and PeriodTo select a custom window. When both are set
	// they override Period and RelativeDate.
	PeriodFrom time.Time
	PeriodTo   time.Time
	// Period selects the reporting window; zero means last 20 records.
	// For a custom window set PeriodFrom and PeriodTo instead.
	Period ReportPeriod

	AccountFilter     ReportFilterType
	AccountFilterIDs  []int64
	TagFilter         ReportFilterType
	TagFilterIDs      []int64
	CategoryFilter    ReportFilterType
	CategoryFilterIDs []int64

	// IncludeTypes limits record types; zero means any.
	IncludeTypes TransactionType
	// ConvertToCurrencyID converts amounts to the given currency; zero
	// keeps the original currency of each record.
	ConvertToCurrencyID int64

	// Aggregated requests a report table instead of a record list.
	// Not supported, see ErrAggregatedNotSupported.
	Aggregated bool
	// GroupBy configures aggregated reports only.
	GroupBy ReportGrouping

	// IDs fetches the given records regardless of other filters. Used
	// for synchronization after getChangeList.
	IDs []int64
}

func (req *TransactionsRequest) validate() error {
	if !req.Aggregated && req.GroupBy != 0 && req.GroupBy != GroupingNone {
		return errors.New("GroupBy can be used only with Aggregated")
	}
	if req.AccountFilter != FilterNone && req.AccountFilterIDs == nil {
		return errors.New("AccountFilterIDs must be set if AccountFilter is not FilterNone")
	}
	if req.TagFilter != FilterNone && req.TagFilterIDs == nil {
		return errors.New("TagFilterIDs must be set if TagFilter is not FilterNone")
	}
	if req.CategoryFilter != FilterNone && req.CategoryFilterIDs == nil {
		return errors.New("CategoryFilterIDs must be set if CategoryFilter is not FilterNone")
	}
	return nil
}

// params maps the request onto the r_* parameter names getRecordList
// takes on the wire.
func (req *TransactionsRequest) params(now time.Time) soap.Map {
	period := req.Period
	if period == 0 {
		period = PeriodLast20Records
	}
	include := req.IncludeTypes
	if include == 0 {
		include = TransactionAny
	}
	grouping := req.GroupBy
	if grouping == 0 {
		grouping = GroupingNone
	}

	// is_show_duty keeps transfers to loan accounts visible; the one
	// exception is expense-only requests, where the server would count
	// such transfers as expenses.
	params := soap.Map{
		{Key: "r_period", Value: int64(period)},
		{Key: "is_report", Value: req.Aggregated},
		{Key: "is_show_duty", Value: include != TransactionExpense},
		{Key: "r_how", Value: int64(grouping)},
		{Key: "r_what", Value: int64(include)},
		{Key: "r_currency", Value: req.ConvertToCurrencyID},
		{Key: "r_is_place", Value: int64(req.AccountFilter)},
		{Key: "r_is_tag", Value: int64(req.TagFilter)},
		{Key: "r_is_category", Value: int64(req.CategoryFilter)},
	}

	if req.AccountFilter != FilterNone {
		params = append(params, soap.MapItem{Key: "r_place", Value: req.AccountFilterIDs})
	}
	if req.TagFilter != FilterNone {
		params = append(params, soap.MapItem{Key: "r_tag", Value: req.TagFilterIDs})
	}
	if req.CategoryFilter != FilterNone {
		params = append(params, soap.MapItem{Key: "r_category", Value: req.CategoryFilterIDs})
	}

	if !req.PeriodFrom.IsZero() && !req.PeriodTo.IsZero() {
		params[0].Value = int64(PeriodCustom)
		params = append(params,
			soap.MapItem{Key: "period_from", Value: req.PeriodFrom.Format(dateLayout)},
			soap.MapItem{Key: "period_to", Value: req.PeriodTo.Format(dateLayout)},
		)
		return params
	}

	relative := req.RelativeDate
	if relative.IsZero() {
		relative = now
	}
	return append(params, soap.MapItem{Key: "relative_date", Value: relative.Format(dateLayout)})
}
