package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/ports"
)

var _ ports.RelevanceProvider = (*RelevanceRepo)(nil)

// RelevanceRepo lee product_relevance, que mantiene el subsistema de interacciones.
type RelevanceRepo struct {
	q Querier
}

// NewRelevanceRepository construye el adaptador.
func NewRelevanceRepository(q Querier) *RelevanceRepo {
	return &RelevanceRepo{q: q}
}

// Relevance devuelve la señal del producto. Sin fila (o sin tabla) la señal es cero.
func (r *RelevanceRepo) Relevance(ctx context.Context, productID string) (dto.RelevanceSignal, error) {
	var (
		relevance decimal.Decimal
		sig       dto.RelevanceSignal
	)
	err := r.q.QueryRow(ctx, `
		SELECT relevance, total_interactions, user_count
		FROM product_relevance WHERE product_id = $1`, productID,
	).Scan(&relevance, &sig.TotalInteractions, &sig.UserCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return dto.RelevanceSignal{}, nil
		}
		return dto.RelevanceSignal{}, fmt.Errorf("get product relevance: %w", err)
	}
	sig.Relevance = clampUnit(relevance).InexactFloat64()
	return sig, nil
}

func clampUnit(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return d
}
