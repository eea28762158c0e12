// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/festivo-go/internal/model"
)

var referenceTables = map[model.ReferenceKind]string{
	model.ReferenceGroup:          "groups",
	model.ReferenceCategory:       "categories",
	model.ReferenceCollectionMode: "collection_modes",
	model.ReferenceExpenseMode:    "expense_modes",
}

func referenceTable(kind model.ReferenceKind) (string, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown reference kind %q", kind)
	}
	return table, nil
}

// CreateReference adds a value to a reference table. Names are unique per
// festival ignoring case.
func (q *Queries) CreateReference(ctx context.Context, kind model.ReferenceKind, festivalID int64, name string, now time.Time) (model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return model.Reference{}, err
	}
	res, err := q.db.ExecContext(ctx, `INSERT INTO `+table+` (festival_id, name, created_at) VALUES (?, ?, ?)`,
		festivalID, name, now)
	if err != nil {
		return model.Reference{}, duplicate(err, kind.Label(), name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Reference{}, err
	}
	return q.GetReference(ctx, kind, festivalID, id)
}

// GetReference returns one reference value.
func (q *Queries) GetReference(ctx context.Context, kind model.ReferenceKind, festivalID, id int64) (model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return model.Reference{}, err
	}
	ref := model.Reference{Kind: kind}
	err = q.db.QueryRowContext(ctx, `SELECT id, festival_id, name, created_at FROM `+table+`
		WHERE festival_id = ? AND id = ?`, festivalID, id).
		Scan(&ref.ID, &ref.FestivalID, &ref.Name, &ref.CreatedAt)
	return ref, notFound(err)
}

// ListReferences returns the values of a reference table in insertion order.
func (q *Queries) ListReferences(ctx context.Context, kind model.ReferenceKind, festivalID int64) ([]model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, `SELECT id, festival_id, name, created_at FROM `+table+`
		WHERE festival_id = ? ORDER BY id`, festivalID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var refs []model.Reference
	for rows.Next() {
		ref := model.Reference{Kind: kind}
		if err := rows.Scan(&ref.ID, &ref.FestivalID, &ref.Name, &ref.CreatedAt); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// DeleteReference removes a reference value. Existing transactions keep the
// stored text.
func (q *Queries) DeleteReference(ctx context.Context, kind model.ReferenceKind, festivalID, id int64) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE festival_id = ? AND id = ?`, festivalID, id)
	return requireAffected(res, err)
}
