package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mishamsk/drebedengi-go/drebedengi"
)

// Reference lists (categories, sources, tags, currencies, accounts) are
// small and change rarely, so each upsert rewrites the changed rows only.

func (s *Storage) UpsertExpenseCategories(ctx context.Context, categories []drebedengi.ExpenseCategory) error {
	if len(categories) == 0 {
		return nil
	}

	query := sq.
		Insert("expense_categories").
		Columns("id", "parent_id", "budget_family_id", "name", "is_hidden", "sort").
		Suffix(`on conflict (id) do update set
			parent_id = excluded.parent_id,
			budget_family_id = excluded.budget_family_id,
			name = excluded.name,
			is_hidden = excluded.is_hidden,
			sort = excluded.sort`)

	for _, c := range categories {
		query = query.Values(c.ID, c.ParentID, c.BudgetFamilyID, c.Name, c.IsHidden, c.Sort)
	}
	if err := s.db.Insert(ctx, query, nil); err != nil {
		return fmt.Errorf("upsert expense categories: %w", err)
	}

	return nil
}

func (s *Storage) DeleteExpenseCategories(ctx context.Context, ids []int64) error {
	return s.deleteByID(ctx, "expense_categories", ids)
}

func (s *Storage) UpsertIncomeSources(ctx context.Context, sources []drebedengi.IncomeSource) error {
	if len(sources) == 0 {
		return nil
	}

	query := sq.
		Insert("income_sources").
		Columns("id", "parent_id", "budget_family_id", "name", "is_hidden", "sort").
		Suffix(`on conflict (id) do update set
			parent_id = excluded.parent_id,
			budget_family_id = excluded.budget_family_id,
			name = excluded.name,
			is_hidden = excluded.is_hidden,
			sort = excluded.sort`)

	for _, src := range sources {
		query = query.Values(src.ID, src.ParentID, src.BudgetFamilyID, src.Name, src.IsHidden, src.Sort)
	}
	if err := s.db.Insert(ctx, query, nil); err != nil {
		return fmt.Errorf("upsert income sources: %w", err)
	}

	return nil
}

func (s *Storage) DeleteIncomeSources(ctx context.Context, ids []int64) error {
	return s.deleteByID(ctx, "income_sources", ids)
}

func (s *Storage) UpsertTags(ctx context.Context, tags []drebedengi.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	query := sq.
		Insert("tags").
		Columns("id", "parent_id", "budget_family_id", "name", "is_hidden", "is_shared", "sort").
		Suffix(`on conflict (id) do update set
			parent_id = excluded.parent_id,
			budget_family_id = excluded.budget_family_id,
			name = excluded.name,
			is_hidden = excluded.is_hidden,
			is_shared = excluded.is_shared,
			sort = excluded.sort`)

	for _, t := range tags {
		query = query.Values(t.ID, t.ParentID, t.BudgetFamilyID, t.Name, t.IsHidden, t.IsShared, t.Sort)
	}
	if err := s.db.Insert(ctx, query, nil); err != nil {
		return fmt.Errorf("upsert tags: %w", err)
	}

	return nil
}

func (s *Storage) DeleteTags(ctx context.Context, ids []int64) error {
	return s.deleteByID(ctx, "tags", ids)
}

func (s *Storage) UpsertCurrencies(ctx context.Context, currencies []drebedengi.Currency) error {
	if len(currencies) == 0 {
		return nil
	}

	query := sq.
		Insert("currencies").
		Columns("id", "name", "code", "exchange_rate", "budget_family_id", "is_default", "is_autoupdate", "is_hidden").
		Suffix(`on conflict (id) do update set
			name = excluded.name,
			code = excluded.code,
			exchange_rate = excluded.exchange_rate,
			budget_family_id = excluded.budget_family_id,
			is_default = excluded.is_default,
			is_autoupdate = excluded.is_autoupdate,
			is_hidden = excluded.is_hidden`)

	for _, c := range currencies {
		query = query.Values(c.ID, c.UserName, c.CurrencyCode, c.ExchangeRate, c.BudgetFamilyID, c.IsDefault, c.IsAutoUpdate, c.IsHidden)
	}
	if err := s.db.Insert(ctx, query, nil); err != nil {
		return fmt.Errorf("upsert currencies: %w", err)
	}

	return nil
}

func (s *Storage) DeleteCurrencies(ctx context.Context, ids []int64) error {
	return s.deleteByID(ctx, "currencies", ids)
}

func (s *Storage) UpsertAccounts(ctx context.Context, accounts []drebedengi.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	query := sq.
		Insert("accounts").
		Columns("id", "budget_family_id", "name", "is_hidden", "is_autohide", "is_loan", "sort", "wallet_user_id", "icon_id").
		Suffix(`on conflict (id) do update set
			budget_family_id = excluded.budget_family_id,
			name = excluded.name,
			is_hidden = excluded.is_hidden,
			is_autohide = excluded.is_autohide,
			is_loan = excluded.is_loan,
			sort = excluded.sort,
			wallet_user_id = excluded.wallet_user_id,
			icon_id = excluded.icon_id`)

	for _, a := range accounts {
		query = query.Values(a.ID, a.BudgetFamilyID, a.Name, a.IsHidden, a.IsAutoHide, a.IsLoan, a.Sort, a.WalletUserID, a.IconID)
	}
	if err := s.db.Insert(ctx, query, nil); err != nil {
		return fmt.Errorf("upsert accounts: %w", err)
	}

	return nil
}

func (s *Storage) DeleteAccounts(ctx context.Context, ids []int64) error {
	return s.deleteByID(ctx, "accounts", ids)
}
