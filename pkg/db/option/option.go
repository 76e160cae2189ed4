// Package option holds composable gorm scopes shared by repositories.
package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop-backend/pkg/db/pagination"
)

type QueryOption func(*gorm.DB) *gorm.DB

// Apply runs every option against tx in order.
func Apply(tx *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt != nil {
			tx = opt(tx)
		}
	}
	return tx
}

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	// Allow restricts SortBy to known columns. Empty means any identifier.
	Allow map[string]bool
}

// WithSortBy orders by SortBy (default created_at) in OrderBy direction (default DESC).
func WithSortBy(s QuerySortBy) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		column := s.SortBy
		if column == "" || (len(s.Allow) > 0 && !s.Allow[column]) {
			column = "created_at"
		}

		desc := !strings.EqualFold(s.OrderBy, "ASC")
		return tx.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
}

func ApplyPagination(p pagination.Pagination) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		n := p.Normalize()
		return tx.Offset(n.Offset()).Limit(n.Limit)
	}
}

type Operator string

const (
	EQ  Operator = "="
	NEQ Operator = "<>"
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
	IN  Operator = "IN"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

func ApplyOperator(c Condition) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		op := c.Operator
		if op == "" {
			op = EQ
		}
		if op == IN {
			return tx.Where(fmt.Sprintf("%s IN ?", quote(tx, c.Field)), c.Value)
		}
		return tx.Where(fmt.Sprintf("%s %s ?", quote(tx, c.Field), op), c.Value)
	}
}

func WithLockingUpdate() QueryOption {
	return LockingUpdate
}

// LockingUpdate is a scope adding SELECT ... FOR UPDATE where the dialect supports it.
func LockingUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector != nil && tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func quote(tx *gorm.DB, field string) string {
	if tx.Statement == nil {
		return field
	}
	return tx.Statement.Quote(field)
}
