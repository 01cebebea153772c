package drebedengi

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the record type code used by getRecordList.
type TransactionType int

const (
	TransactionIncome   TransactionType = 2
	TransactionExpense  TransactionType = 3
	TransactionTransfer TransactionType = 4
	TransactionExchange TransactionType = 5
	TransactionAny      TransactionType = 6
)

func (t TransactionType) valid() bool {
	return t >= TransactionIncome && t <= TransactionAny
}

func (t TransactionType) String() string {
	switch t {
	case TransactionIncome:
		return "income"
	case TransactionExpense:
		return "expense"
	case TransactionTransfer:
		return "transfer"
	case TransactionExchange:
		return "exchange"
	case TransactionAny:
		return "any"
	}
	return "unknown"
}

// ObjectType is the object type code used by the change list and the
// reference lists.
type ObjectType int

const (
	ObjectTransaction      ObjectType = 1
	ObjectIncomeSource     ObjectType = 2
	ObjectExpenseCategory  ObjectType = 3
	ObjectAccount          ObjectType = 4
	ObjectCurrency         ObjectType = 5
	ObjectTag              ObjectType = 6
	ObjectBudgetAccum      ObjectType = 7
	ObjectBudgetAccumOrder ObjectType = 8
)

func (o ObjectType) valid() bool {
	return o >= ObjectTransaction && o <= ObjectBudgetAccumOrder
}

func (o ObjectType) String() string {
	switch o {
	case ObjectTransaction:
		return "transaction"
	case ObjectIncomeSource:
		return "income_source"
	case ObjectExpenseCategory:
		return "expense_category"
	case ObjectAccount:
		return "account"
	case ObjectCurrency:
		return "currency"
	case ObjectTag:
		return "tag"
	case ObjectBudgetAccum:
		return "budget_accum"
	case ObjectBudgetAccumOrder:
		return "budget_accum_order"
	}
	return "unknown"
}

// ActionType is the change action code used by getChangeList.
type ActionType int

const (
	ActionCreate ActionType = 1
	ActionUpdate ActionType = 2
	ActionDelete ActionType = 3
)

func (a ActionType) valid() bool {
	return a >= ActionCreate && a <= ActionDelete
}

func (a ActionType) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// ReportPeriod selects the reporting window of getRecordList.
type ReportPeriod int

const (
	PeriodCustom        ReportPeriod = 0
	PeriodThisMonth     ReportPeriod = 1
	PeriodLastMonth     ReportPeriod = 2
	PeriodThisQuarter   ReportPeriod = 3
	PeriodThisYear      ReportPeriod = 4
	PeriodLastYear      ReportPeriod = 5
	PeriodAllTime       ReportPeriod = 6
	PeriodToday         ReportPeriod = 7
	PeriodLast20Records ReportPeriod = 8
)

// ReportGrouping configures aggregated reports of getRecordList.
type ReportGrouping int

const (
	GroupingNone              ReportGrouping = 1
	GroupingByIncomeSource    ReportGrouping = 2
	GroupingByExpenseCategory ReportGrouping = 3
)

// ReportFilterType configures the account, tag and category filters of
// getRecordList.
type ReportFilterType int

const (
	FilterNone           ReportFilterType = 0
	FilterSelectedOnly   ReportFilterType = 1
	FilterExceptSelected ReportFilterType = 2
)

// Transaction is one record of getRecordList. For transfers the server
// returns two records, one per leg.
type Transaction struct {
	ID int64
	// BudgetObjectID points at the expense category for expenses, the
	// income source for incomes and the source account for transfers.
	BudgetObjectID int64
	UserNUID       int64
	BudgetFamilyID int64
	IsLoanTransfer bool
	OperationDate  time.Time
	CurrencyID     int64
	OperationType  TransactionType
	AccountID      int64
	// Amount is in minor units of the original currency (sum * 100).
	Amount  int64
	Comment string
	// OperUTCTimestamp is nil when the server omits it, which it does
	// for getRecordList calls with an explicit id list.
	OperUTCTimestamp *time.Time
	GroupID          *int64
}

// SameTransferPair reports whether a and b are the two legs of a single
// transfer transaction.
func SameTransferPair(a, b Transaction) bool {
	return a.Amount == -b.Amount &&
		a.BudgetFamilyID == b.BudgetFamilyID &&
		a.Comment == b.Comment &&
		a.CurrencyID == b.CurrencyID &&
		a.OperationDate.Equal(b.OperationDate) &&
		a.UserNUID == b.UserNUID
}

// ChangeRecord is one entry of getChangeList.
type ChangeRecord struct {
	RevisionID       int64
	ActionType       ActionType
	ChangeObjectType ObjectType
	ObjectID         int64
	Date             time.Time
}

// ExpenseCategory is one entry of getCategoryList. Categories form a
// tree; a root category has ParentID -1.
type ExpenseCategory struct {
	ID             int64
	ParentID       int64
	BudgetFamilyID int64
	ObjectType     ObjectType
	Name           string
	IsHidden       bool
	Sort           int64
}

// IncomeSource is one entry of getSourceList. Sources form a tree; a
// root source has ParentID -1.
type IncomeSource struct {
	ID             int64
	ParentID       int64
	BudgetFamilyID int64
	ObjectType     ObjectType
	Name           string
	IsHidden       bool
	Sort           int64
}

// Tag is one entry of getTagList.
type Tag struct {
	ID             int64
	ParentID       int64
	BudgetFamilyID int64
	Name           string
	IsHidden       bool
	IsShared       bool
	Sort           int64
}

// Currency is one entry of getCurrencyList.
type Currency struct {
	ID       int64
	UserName string
	// CurrencyCode is the international 3-letter code.
	CurrencyCode string
	// ExchangeRate is the current rate from the default currency.
	ExchangeRate   decimal.Decimal
	BudgetFamilyID int64
	IsDefault      bool
	IsAutoUpdate   bool
	IsHidden       bool
}

// Account is one entry of getPlaceList.
type Account struct {
	ID             int64
	BudgetFamilyID int64
	ObjectType     ObjectType
	Name           string
	IsHidden       bool
	IsAutoHide     bool
	IsLoan         bool
	Sort           int64
	// WalletUserID is set when the account is a personal wallet.
	WalletUserID *int64
	IconID       *string
}
