package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBulkInsertIgnoreEmptyRows(t *testing.T) {
	t.Parallel()

	n, err := BulkInsertIgnore(context.TODO(), nil, InsertIgnoreConfig{
		Table:        "store_info",
		Columns:      []string{"a"},
		ConflictKeys: []string{"a"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkInsertIgnoreValidation(t *testing.T) {
	t.Parallel()

	rows := [][]any{{"x"}}

	_, err := BulkInsertIgnore(context.TODO(), nil, InsertIgnoreConfig{Table: "store_info", ConflictKeys: []string{"a"}}, rows)
	assert.ErrorContains(t, err, "no columns")

	_, err = BulkInsertIgnore(context.TODO(), nil, InsertIgnoreConfig{Table: "store_info", Columns: []string{"a"}}, rows)
	assert.ErrorContains(t, err, "no conflict keys")
}

func TestSanitizeTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"store_info"`, sanitizeTable("store_info"))
	assert.Equal(t, `"audit"."store_info"`, sanitizeTable("audit.store_info"))
}

func TestQuoteAndJoin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"store_name", "platform"`, quoteAndJoin([]string{"store_name", "platform"}))
}
