package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"squawk/internal/ast"
)

func TestNewScan_TransactionState(t *testing.T) {
	stmts := stmtsOf(
		ast.Other{Keyword: "SET"},
		ast.Begin{},
		ast.CreateTable{Table: ast.NewObjectName("t")},
		ast.Commit{},
		ast.Begin{},
		ast.Rollback{},
	)
	scan := NewScan(stmts)

	want := []bool{false, false, true, true, false, true}
	for i, inTx := range want {
		ctx := scan.At(i)
		assert.Equal(t, i, ctx.Index)
		assert.Equal(t, inTx, ctx.InTransaction, "statement %d", i)
	}
	assert.Equal(t, len(stmts), scan.Len())
}

func TestNewScan_CreatedBefore(t *testing.T) {
	stmts := stmtsOf(
		alter("users"),
		ast.CreateTable{Table: ast.NewObjectName("Users")},
		alter("users"),
		ast.CreateTable{Table: ast.NewObjectName("public", "orders")},
		alter("orders"),
	)
	scan := NewScan(stmts)

	users := ast.NewObjectName("users")
	assert.False(t, scan.CreatedBefore(0, users))
	assert.False(t, scan.CreatedBefore(1, users), "a table is not created before its own statement")
	assert.True(t, scan.CreatedBefore(2, users))
	assert.True(t, scan.CreatedBefore(4, ast.NewObjectName("public", "orders")))
	assert.False(t, scan.CreatedBefore(4, ast.NewObjectName("orders")), "qualified and unqualified names differ")
}

func TestScan_NilAndOutOfRange(t *testing.T) {
	var scan *Scan
	assert.Equal(t, ScanContext{Index: 3}, scan.At(3))
	assert.False(t, scan.CreatedBefore(0, ast.NewObjectName("t")))
	assert.Zero(t, scan.Len())

	scan = NewScan(nil)
	assert.False(t, scan.At(0).InTransaction)
}

func TestNewScan_CreateIfNotExistsIsNotFresh(t *testing.T) {
	stmts := stmtsOf(
		ast.CreateTable{Table: ast.NewObjectName("users"), IfNotExists: true},
		alter("users"),
	)
	assert.False(t, NewScan(stmts).CreatedBefore(1, ast.NewObjectName("users")))
}

func TestNewScan_Chain(t *testing.T) {
	stmts := stmtsOf(
		ast.Begin{},
		ast.Commit{Chain: true},
		ast.Other{Keyword: "CREATE"},
		ast.Rollback{Chain: true},
		ast.Other{Keyword: "CREATE"},
		ast.Commit{},
		ast.Other{Keyword: "SET"},
	)
	scan := NewScan(stmts)

	want := []bool{false, true, true, true, true, true, false}
	for i, inTx := range want {
		assert.Equal(t, inTx, scan.At(i).InTransaction, "statement %d", i)
	}
}
