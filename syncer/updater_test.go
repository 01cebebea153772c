package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishamsk/drebedengi-go/drebedengi"
)

func change(rev int64, action drebedengi.ActionType, objType drebedengi.ObjectType, id int64) drebedengi.ChangeRecord {
	return drebedengi.ChangeRecord{
		RevisionID:       rev,
		ActionType:       action,
		ChangeObjectType: objType,
		ObjectID:         id,
		Date:             time.Now(),
	}
}

func Test_BuildPlan_GroupsByObjectType(t *testing.T) {
	plan := buildPlan([]drebedengi.ChangeRecord{
		change(1, drebedengi.ActionCreate, drebedengi.ObjectTransaction, 100),
		change(2, drebedengi.ActionUpdate, drebedengi.ObjectTransaction, 200),
		change(3, drebedengi.ActionCreate, drebedengi.ObjectExpenseCategory, 10),
		change(4, drebedengi.ActionDelete, drebedengi.ObjectTag, 5),
	})

	assert.ElementsMatch(t, []int64{100, 200}, plan.fetch[drebedengi.ObjectTransaction])
	assert.ElementsMatch(t, []int64{10}, plan.fetch[drebedengi.ObjectExpenseCategory])
	assert.ElementsMatch(t, []int64{5}, plan.remove[drebedengi.ObjectTag])
	assert.Empty(t, plan.skipped)
}

func Test_BuildPlan_CreateThenDelete_OnlyDeletes(t *testing.T) {
	plan := buildPlan([]drebedengi.ChangeRecord{
		change(1, drebedengi.ActionCreate, drebedengi.ObjectTransaction, 100),
		change(2, drebedengi.ActionUpdate, drebedengi.ObjectTransaction, 100),
		change(3, drebedengi.ActionDelete, drebedengi.ObjectTransaction, 100),
	})

	assert.Empty(t, plan.fetch[drebedengi.ObjectTransaction])
	assert.Equal(t, []int64{100}, plan.remove[drebedengi.ObjectTransaction])
}

func Test_BuildPlan_DeleteThenRecreate_OnlyFetches(t *testing.T) {
	plan := buildPlan([]drebedengi.ChangeRecord{
		change(1, drebedengi.ActionDelete, drebedengi.ObjectAccount, 7),
		change(2, drebedengi.ActionCreate, drebedengi.ObjectAccount, 7),
	})

	assert.Equal(t, []int64{7}, plan.fetch[drebedengi.ObjectAccount])
	assert.Empty(t, plan.remove[drebedengi.ObjectAccount])
}

func Test_BuildPlan_FoldsByRevisionOrder_NotInputOrder(t *testing.T) {
	// the server does not promise ordering, the highest revision must win
	plan := buildPlan([]drebedengi.ChangeRecord{
		change(5, drebedengi.ActionDelete, drebedengi.ObjectCurrency, 3),
		change(2, drebedengi.ActionCreate, drebedengi.ObjectCurrency, 3),
	})

	assert.Empty(t, plan.fetch[drebedengi.ObjectCurrency])
	assert.Equal(t, []int64{3}, plan.remove[drebedengi.ObjectCurrency])
}

func Test_BuildPlan_SkipsBudgetAccumulators(t *testing.T) {
	plan := buildPlan([]drebedengi.ChangeRecord{
		change(1, drebedengi.ActionCreate, drebedengi.ObjectBudgetAccum, 1),
		change(2, drebedengi.ActionUpdate, drebedengi.ObjectBudgetAccumOrder, 2),
		change(3, drebedengi.ActionCreate, drebedengi.ObjectTag, 3),
	})

	require.Len(t, plan.skipped, 2)
	assert.Equal(t, drebedengi.ObjectBudgetAccum, plan.skipped[0].ChangeObjectType)
	assert.Equal(t, drebedengi.ObjectBudgetAccumOrder, plan.skipped[1].ChangeObjectType)
	assert.Equal(t, []int64{3}, plan.fetch[drebedengi.ObjectTag])
}

func Test_PlannedTypes_ReferencesBeforeTransactions(t *testing.T) {
	last := plannedTypes[len(plannedTypes)-1]
	assert.Equal(t, drebedengi.ObjectTransaction, last)
}
