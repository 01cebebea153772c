package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vgarvardt/gue/v5"
	"go.uber.org/zap"

	"github.com/mishamsk/drebedengi-go/drebedengi"
)

func (s *Syncer) updater(ctx context.Context, job *gue.Job) error {
	var args jobArgs
	if jsonErr := json.Unmarshal(job.Args, &args); jsonErr != nil {
		return fmt.Errorf("json unmarshal: %w", jsonErr)
	}

	changes, err := s.api.GetChanges(ctx, args.FromRevision)
	if err != nil {
		return fmt.Errorf("get changes: %w", err)
	}

	plan := buildPlan(changes)

	for _, skipped := range plan.skipped {
		s.logger.Info(
			"updater: skipping unsupported object type",
			zap.Stringer("object_type", skipped.ChangeObjectType),
			zap.Int64("object_id", skipped.ObjectID),
		)
	}

	err = s.storage.WithinTransaction(ctx, func(ctx context.Context, tx Storage) error {
		if err := s.applyPlan(ctx, tx, plan); err != nil {
			return err
		}

		if err := tx.SetRevision(ctx, args.ToRevision); err != nil {
			return fmt.Errorf("set revision: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(
		"updater: replica synced",
		zap.Int64("revision", args.ToRevision),
		zap.Int("changes", len(changes)),
	)

	return nil
}

// syncPlan is the per-object-type outcome of a change list: ids to
// refetch and upsert, and ids to delete.
type syncPlan struct {
	fetch   map[drebedengi.ObjectType][]int64
	remove  map[drebedengi.ObjectType][]int64
	skipped []drebedengi.ChangeRecord
}

// planned object types, in apply order: reference lists first so
// transactions never point at rows that don't exist yet
var plannedTypes = []drebedengi.ObjectType{
	drebedengi.ObjectCurrency,
	drebedengi.ObjectAccount,
	drebedengi.ObjectExpenseCategory,
	drebedengi.ObjectIncomeSource,
	drebedengi.ObjectTag,
	drebedengi.ObjectTransaction,
}

// buildPlan folds a change list into the final action per object. An
// object created and later deleted within one list is only deleted; a
// delete followed by a re-create is only fetched.
func buildPlan(changes []drebedengi.ChangeRecord) syncPlan {
	ordered := make([]drebedengi.ChangeRecord, len(changes))
	copy(ordered, changes)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].RevisionID < ordered[j].RevisionID })

	plan := syncPlan{
		fetch:  make(map[drebedengi.ObjectType][]int64),
		remove: make(map[drebedengi.ObjectType][]int64),
	}

	type objectKey struct {
		objType drebedengi.ObjectType
		id      int64
	}
	final := make(map[objectKey]drebedengi.ActionType)
	order := make([]objectKey, 0, len(ordered))

	for _, ch := range ordered {
		if !supportedType(ch.ChangeObjectType) {
			plan.skipped = append(plan.skipped, ch)
			continue
		}

		key := objectKey{objType: ch.ChangeObjectType, id: ch.ObjectID}
		if _, seen := final[key]; !seen {
			order = append(order, key)
		}
		final[key] = ch.ActionType
	}

	for _, key := range order {
		if final[key] == drebedengi.ActionDelete {
			plan.remove[key.objType] = append(plan.remove[key.objType], key.id)
			continue
		}
		plan.fetch[key.objType] = append(plan.fetch[key.objType], key.id)
	}

	return plan
}

func supportedType(t drebedengi.ObjectType) bool {
	for _, pt := range plannedTypes {
		if t == pt {
			return true
		}
	}
	return false
}

func (s *Syncer) applyPlan(ctx context.Context, store Storage, plan syncPlan) error {
	for _, objType := range plannedTypes {
		if ids := plan.remove[objType]; len(ids) > 0 {
			if err := s.removeObjects(ctx, store, objType, ids); err != nil {
				return fmt.Errorf("remove %s objects: %w", objType, err)
			}
		}
		if ids := plan.fetch[objType]; len(ids) > 0 {
			if err := s.refreshObjects(ctx, store, objType, ids); err != nil {
				return fmt.Errorf("refresh %s objects: %w", objType, err)
			}
		}
	}
	return nil
}

func (s *Syncer) removeObjects(ctx context.Context, store Storage, objType drebedengi.ObjectType, ids []int64) error {
	switch objType {
	case drebedengi.ObjectTransaction:
		return store.DeleteTransactions(ctx, ids)
	case drebedengi.ObjectExpenseCategory:
		return store.DeleteExpenseCategories(ctx, ids)
	case drebedengi.ObjectIncomeSource:
		return store.DeleteIncomeSources(ctx, ids)
	case drebedengi.ObjectTag:
		return store.DeleteTags(ctx, ids)
	case drebedengi.ObjectCurrency:
		return store.DeleteCurrencies(ctx, ids)
	case drebedengi.ObjectAccount:
		return store.DeleteAccounts(ctx, ids)
	}
	return fmt.Errorf("unsupported object type %d", objType)
}

func (s *Syncer) refreshObjects(ctx context.Context, store Storage, objType drebedengi.ObjectType, ids []int64) error {
	switch objType {
	case drebedengi.ObjectTransaction:
		txs, err := s.api.GetTransactions(ctx, drebedengi.TransactionsRequest{IDs: ids})
		if err != nil {
			return fmt.Errorf("get transactions: %w", err)
		}
		return store.UpsertTransactions(ctx, txs)
	case drebedengi.ObjectExpenseCategory:
		categories, err := s.api.GetExpenseCategories(ctx, ids)
		if err != nil {
			return fmt.Errorf("get expense categories: %w", err)
		}
		return store.UpsertExpenseCategories(ctx, categories)
	case drebedengi.ObjectIncomeSource:
		sources, err := s.api.GetIncomeSources(ctx, ids)
		if err != nil {
			return fmt.Errorf("get income sources: %w", err)
		}
		return store.UpsertIncomeSources(ctx, sources)
	case drebedengi.ObjectTag:
		tags, err := s.api.GetTags(ctx, ids)
		if err != nil {
			return fmt.Errorf("get tags: %w", err)
		}
		return store.UpsertTags(ctx, tags)
	case drebedengi.ObjectCurrency:
		currencies, err := s.api.GetCurrencies(ctx, ids)
		if err != nil {
			return fmt.Errorf("get currencies: %w", err)
		}
		return store.UpsertCurrencies(ctx, currencies)
	case drebedengi.ObjectAccount:
		accounts, err := s.api.GetAccounts(ctx, ids)
		if err != nil {
			return fmt.Errorf("get accounts: %w", err)
		}
		return store.UpsertAccounts(ctx, accounts)
	}
	return fmt.Errorf("unsupported object type %d", objType)
}
