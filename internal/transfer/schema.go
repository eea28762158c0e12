// Package transfer validates bulk imports of collections and expenses and
// exports them back in the same row shape.
package transfer

import (
	"fmt"
	"strings"

	"github.com/olegiv/festivo-go/internal/model"
)

// Kind is the transaction type carried by a batch.
type Kind string

// Batch kinds.
const (
	KindCollection Kind = "collection"
	KindExpense    Kind = "expense"
)

// ParseKind accepts the singular or plural kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "collection", "collections":
		return KindCollection, nil
	case "expense", "expenses":
		return KindExpense, nil
	}
	return "", model.Validation("kind", "must be collection or expense")
}

// Limits applied to text fields.
const (
	MaxTitleLength = 255
	MaxNoteLength  = 1000
)

// CollectionRow is the import and export shape of a collection.
type CollectionRow struct {
	Name             string  `json:"name"`
	Amount           float64 `json:"amount"`
	GroupName        string  `json:"group_name"`
	Mode             string  `json:"mode"`
	Note             string  `json:"note,omitempty"`
	Date             string  `json:"date"`
	TimeHour         int     `json:"time_hour"`
	TimeMinute       int     `json:"time_minute"`
	CreatedByAdminID *int64  `json:"created_by_admin_id,omitempty"`
}

// ExpenseRow is the import and export shape of an expense.
type ExpenseRow struct {
	Item             string  `json:"item"`
	Pieces           int64   `json:"pieces"`
	PricePerPiece    float64 `json:"price_per_piece"`
	TotalAmount      float64 `json:"total_amount"`
	Category         string  `json:"category"`
	Mode             string  `json:"mode"`
	Note             string  `json:"note,omitempty"`
	Date             string  `json:"date"`
	TimeHour         int     `json:"time_hour"`
	TimeMinute       int     `json:"time_minute"`
	CreatedByAdminID *int64  `json:"created_by_admin_id,omitempty"`
}

// Column order used for CSV export and expected by default for CSV import.
var (
	CollectionColumns = []string{"name", "amount", "group_name", "mode", "note", "date", "time_hour", "time_minute", "created_by_admin_id"}
	ExpenseColumns    = []string{"item", "pieces", "price_per_piece", "total_amount", "category", "mode", "note", "date", "time_hour", "time_minute", "created_by_admin_id"}
)

// CollectionRowFrom converts a stored collection to its row shape.
func CollectionRowFrom(c model.Collection) CollectionRow {
	return CollectionRow{
		Name:             c.Name,
		Amount:           c.Amount,
		GroupName:        c.GroupName,
		Mode:             c.Mode,
		Note:             c.Note,
		Date:             model.FormatDate(c.Date),
		TimeHour:         c.TimeHour,
		TimeMinute:       c.TimeMinute,
		CreatedByAdminID: c.CreatedByAdminID,
	}
}

// ExpenseRowFrom converts a stored expense to its row shape.
func ExpenseRowFrom(e model.Expense) ExpenseRow {
	return ExpenseRow{
		Item:             e.Item,
		Pieces:           e.Pieces,
		PricePerPiece:    e.PricePerPiece,
		TotalAmount:      e.TotalAmount,
		Category:         e.Category,
		Mode:             e.Mode,
		Note:             e.Note,
		Date:             model.FormatDate(e.Date),
		TimeHour:         e.TimeHour,
		TimeMinute:       e.TimeMinute,
		CreatedByAdminID: e.CreatedByAdminID,
	}
}

// Batch is a fully validated import. Exactly one of Collections or Expenses is
// populated, according to Kind.
type Batch struct {
	Kind        Kind
	Collections []model.Collection
	Expenses    []model.Expense
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	if b.Kind == KindExpense {
		return len(b.Expenses)
	}
	return len(b.Collections)
}

// RowError reports the first invalid row of a batch. Row is 1-based.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
