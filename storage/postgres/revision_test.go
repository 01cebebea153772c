package postgres

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishamsk/drebedengi-go/syncer"
)

var _ syncer.Storage = (*Storage)(nil)

func Test_RevisionQuery(t *testing.T) {
	sql, args, err := revisionQuery().PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT revision FROM sync_state WHERE id = $1", sql)
	assert.Equal(t, []interface{}{1}, args)
}
