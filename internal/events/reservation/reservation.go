// Package reservation moves committed stock in and out of cantidad_disponible.
// All movements for one event write happen inside the caller's transaction:
// every delta is validated against the locked article rows before the first
// update is issued, so a rejected write never leaves a partial debit behind.
package reservation

import (
	"context"
	"fmt"
	"sort"

	"github.com/avpro-events/avpro-backend/pkg/db/models"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockDelta is the net stock movement for one article. Positive Qty debits
// available units, negative Qty credits them back.
type StockDelta struct {
	ArticleID uuid.UUID
	Qty       int
}

// Summary reports the units actually moved by an Apply call.
type Summary struct {
	Debited  int64
	Credited int64
}

// Apply locks the affected article rows in a deterministic order, validates
// every delta, and only then writes the new availability. Credits are capped
// at cantidad_total so an over-release can never inflate stock.
func Apply(ctx context.Context, tx *gorm.DB, deltas []StockDelta) (Summary, error) {
	var summary Summary

	merged := map[uuid.UUID]int{}
	for _, delta := range deltas {
		if delta.ArticleID == uuid.Nil {
			return summary, pkgerrors.New(pkgerrors.CodeValidation, "article id is required")
		}
		merged[delta.ArticleID] += delta.Qty
	}

	ids := make([]uuid.UUID, 0, len(merged))
	for id, qty := range merged {
		if qty == 0 {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return summary, nil
	}
	// Lock rows in a stable order so concurrent writers cannot deadlock.
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	qb := tx.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		qb = qb.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []models.Article
	if err := qb.Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock article rows")
	}

	byID := make(map[uuid.UUID]*models.Article, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	type pendingWrite struct {
		articleID    uuid.UUID
		newAvailable int
	}
	writes := make([]pendingWrite, 0, len(ids))

	for _, id := range ids {
		article, ok := byID[id]
		if !ok {
			return summary, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("articulo %s not found", id))
		}
		qty := merged[id]

		newAvailable := article.AvailableQty - qty
		if qty > 0 && newAvailable < 0 {
			return summary, pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("articulo %q has %d unit(s) available, %d requested", article.Description, article.AvailableQty, qty)).
				WithDetails(map[string]any{
					"articulo_id":         article.ID,
					"codigo":              article.Code,
					"descripcion":         article.Description,
					"cantidad_disponible": article.AvailableQty,
					"cantidad_solicitada": qty,
				})
		}
		if newAvailable > article.TotalQty {
			newAvailable = article.TotalQty
		}

		moved := article.AvailableQty - newAvailable
		if moved > 0 {
			summary.Debited += int64(moved)
		} else {
			summary.Credited += int64(-moved)
		}
		writes = append(writes, pendingWrite{articleID: id, newAvailable: newAvailable})
	}

	for _, write := range writes {
		if err := tx.WithContext(ctx).
			Model(&models.Article{}).
			Where("id = ?", write.articleID).
			Update("cantidad_disponible", write.newAvailable).
			Error; err != nil {
			return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update article availability")
		}
	}

	return summary, nil
}
