package repository

import (
	"context"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos (DIP).
type ProductRepository interface {
	List(ctx context.Context) ([]*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
}
