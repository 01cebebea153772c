package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/mishamsk/drebedengi-go/drebedengi"
)

func (s *Storage) UpsertTransactions(ctx context.Context, txs []drebedengi.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	query := sq.
		Insert("transactions").
		Columns(
			"id",
			"budget_object_id",
			"user_nuid",
			"budget_family_id",
			"is_loan_transfer",
			"operation_date",
			"currency_id",
			"operation_type",
			"account_id",
			"amount",
			"comment",
			"oper_utc_timestamp",
			"group_id",
		).
		Suffix(`on conflict (id) do update set
			budget_object_id = excluded.budget_object_id,
			user_nuid = excluded.user_nuid,
			budget_family_id = excluded.budget_family_id,
			is_loan_transfer = excluded.is_loan_transfer,
			operation_date = excluded.operation_date,
			currency_id = excluded.currency_id,
			operation_type = excluded.operation_type,
			account_id = excluded.account_id,
			amount = excluded.amount,
			comment = excluded.comment,
			oper_utc_timestamp = excluded.oper_utc_timestamp,
			group_id = excluded.group_id`)

	for _, tx := range txs {
		query = query.Values(
			tx.ID,
			tx.BudgetObjectID,
			tx.UserNUID,
			tx.BudgetFamilyID,
			tx.IsLoanTransfer,
			tx.OperationDate,
			tx.CurrencyID,
			int(tx.OperationType),
			tx.AccountID,
			decimal.New(tx.Amount, -2), // minor units to major
			tx.Comment,
			tx.OperUTCTimestamp,
			tx.GroupID,
		)
	}
	if err := s.db.Insert(ctx, query, nil); err != nil {
		return fmt.Errorf("upsert transactions: %w", err)
	}

	return nil
}

func (s *Storage) DeleteTransactions(ctx context.Context, ids []int64) error {
	return s.deleteByID(ctx, "transactions", ids)
}
