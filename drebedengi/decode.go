package drebedengi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mishamsk/drebedengi-go/pkg/soap"
)

// ErrMissingField is returned in strict mode when a response map lacks a
// required record field.
var ErrMissingField = errors.New("missing required field")

const dateTimeLayout = "2006-01-02 15:04:05"

// fieldReader reads typed record fields out of a decoded response map.
// It keeps the first error it hits so decoders stay flat.
type fieldReader struct {
	vals   soap.Values
	strict bool
	err    error
}

func (r *fieldReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s: %w", key, err)
	}
}

func (r *fieldReader) missing(key string) {
	if r.strict && r.err == nil {
		r.err = fmt.Errorf("%w: %s", ErrMissingField, key)
	}
}

func (r *fieldReader) str(key string) string {
	v, ok := r.vals[key]
	if !ok {
		r.missing(key)
	}
	return v
}

// optStr is for fields the server may omit or send empty.
func (r *fieldReader) optStr(key string) string {
	return r.vals[key]
}

func (r *fieldReader) optStrPtr(key string) *string {
	v, ok := r.vals[key]
	if !ok {
		return nil
	}
	return &v
}

func (r *fieldReader) int64(key string) int64 {
	v, ok := r.vals[key]
	if !ok {
		r.missing(key)
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.fail(key, err)
		return 0
	}
	return n
}

func (r *fieldReader) optInt64(key string) *int64 {
	v, ok := r.vals[key]
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.fail(key, err)
		return nil
	}
	return &n
}

func (r *fieldReader) boolean(key string) bool {
	v, ok := r.vals[key]
	if !ok {
		r.missing(key)
		return false
	}
	b, err := parseBool(v)
	if err != nil {
		r.fail(key, err)
	}
	return b
}

func (r *fieldReader) dateTime(key string) time.Time {
	v, ok := r.vals[key]
	if !ok {
		r.missing(key)
		return time.Time{}
	}
	t, err := time.ParseInLocation(dateTimeLayout, v, time.Local)
	if err != nil {
		r.fail(key, err)
		return time.Time{}
	}
	return t
}

// optUnix reads an optional unix timestamp with fractional seconds.
func (r *fieldReader) optUnix(key string) *time.Time {
	v, ok := r.vals[key]
	if !ok {
		return nil
	}
	sec, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, err)
		return nil
	}
	t := time.Unix(int64(sec), int64((sec-float64(int64(sec)))*float64(time.Second)))
	return &t
}

func (r *fieldReader) decimal(key string) decimal.Decimal {
	v, ok := r.vals[key]
	if !ok {
		r.missing(key)
		return decimal.Decimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		r.fail(key, err)
		return decimal.Decimal{}
	}
	return d
}

// parseBool accepts the spellings PHP-SOAP responses use for booleans.
func parseBool(v string) (bool, error) {
	switch v {
	case "t", "true", "1", "y", "yes", "on":
		return true, nil
	case "f", "false", "0", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

func decodeTransaction(vals soap.Values, strict bool) (Transaction, error) {
	r := &fieldReader{vals: vals, strict: strict}

	tr := Transaction{
		ID:               r.int64("id"),
		BudgetObjectID:   r.int64("budget_object_id"),
		UserNUID:         r.int64("user_nuid"),
		BudgetFamilyID:   r.int64("budget_family_id"),
		IsLoanTransfer:   r.boolean("is_duty"),
		OperationDate:    r.dateTime("operation_date"),
		CurrencyID:       r.int64("currency_id"),
		OperationType:    TransactionType(r.int64("operation_type")),
		AccountID:        r.int64("place_id"),
		Amount:           r.int64("sum"),
		Comment:          r.optStr("comment"),
		OperUTCTimestamp: r.optUnix("oper_timestamp"),
		GroupID:          r.optInt64("group_id"),
	}
	if r.err == nil && !tr.OperationType.valid() {
		r.err = fmt.Errorf("field operation_type: invalid transaction type %d", tr.OperationType)
	}
	return tr, r.err
}

func decodeChangeRecord(vals soap.Values, strict bool) (ChangeRecord, error) {
	r := &fieldReader{vals: vals, strict: strict}

	ch := ChangeRecord{
		RevisionID:       r.int64("revision"),
		ActionType:       ActionType(r.int64("action_id")),
		ChangeObjectType: ObjectType(r.int64("object_type_id")),
		ObjectID:         r.int64("object_id"),
		Date:             r.dateTime("date"),
	}
	if r.err == nil && !ch.ActionType.valid() {
		r.err = fmt.Errorf("field action_id: invalid action type %d", ch.ActionType)
	}
	if r.err == nil && !ch.ChangeObjectType.valid() {
		r.err = fmt.Errorf("field object_type_id: invalid object type %d", ch.ChangeObjectType)
	}
	return ch, r.err
}

func decodeExpenseCategory(vals soap.Values, strict bool) (ExpenseCategory, error) {
	r := &fieldReader{vals: vals, strict: strict}

	return ExpenseCategory{
		ID:             r.int64("id"),
		ParentID:       r.int64("parent_id"),
		BudgetFamilyID: r.int64("budget_family_id"),
		ObjectType:     ObjectType(r.int64("type")),
		Name:           r.str("name"),
		IsHidden:       r.boolean("is_hidden"),
		Sort:           r.int64("sort"),
	}, r.err
}

func decodeIncomeSource(vals soap.Values, strict bool) (IncomeSource, error) {
	r := &fieldReader{vals: vals, strict: strict}

	return IncomeSource{
		ID:             r.int64("id"),
		ParentID:       r.int64("parent_id"),
		BudgetFamilyID: r.int64("budget_family_id"),
		ObjectType:     ObjectType(r.int64("type")),
		Name:           r.str("name"),
		IsHidden:       r.boolean("is_hidden"),
		Sort:           r.int64("sort"),
	}, r.err
}

func decodeTag(vals soap.Values, strict bool) (Tag, error) {
	r := &fieldReader{vals: vals, strict: strict}

	return Tag{
		ID:             r.int64("id"),
		ParentID:       r.int64("parent_id"),
		BudgetFamilyID: r.int64("family_id"),
		Name:           r.str("name"),
		IsHidden:       r.boolean("is_hidden"),
		IsShared:       r.boolean("is_family"),
		Sort:           r.int64("sort"),
	}, r.err
}

func decodeCurrency(vals soap.Values, strict bool) (Currency, error) {
	r := &fieldReader{vals: vals, strict: strict}

	return Currency{
		ID:             r.int64("id"),
		UserName:       r.str("name"),
		CurrencyCode:   r.str("code"),
		ExchangeRate:   r.decimal("course"),
		BudgetFamilyID: r.int64("family_id"),
		IsDefault:      r.boolean("is_default"),
		IsAutoUpdate:   r.boolean("is_autoupdate"),
		IsHidden:       r.boolean("is_hidden"),
	}, r.err
}

func decodeAccount(vals soap.Values, strict bool) (Account, error) {
	r := &fieldReader{vals: vals, strict: strict}

	return Account{
		ID:             r.int64("id"),
		BudgetFamilyID: r.int64("budget_family_id"),
		ObjectType:     ObjectType(r.int64("type")),
		Name:           r.str("name"),
		IsHidden:       r.boolean("is_hidden"),
		IsAutoHide:     r.boolean("is_autohide"),
		IsLoan:         r.boolean("is_for_duty"),
		Sort:           r.int64("sort"),
		WalletUserID:   r.optInt64("purse_of_nuid"),
		IconID:         r.optStrPtr("icon_id"),
	}, r.err
}
