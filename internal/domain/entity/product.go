package entity

// Product entrada del catálogo usada para agrupar reportes (categoría) y para saber qué SKUs sincronizar.
type Product struct {
	ID       string
	SKU      string // código único en el servicio de inventario
	Name     string
	Category string
}
