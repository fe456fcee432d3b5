package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrFetchFailed   = errors.New("no se pudo obtener el historial de movimientos")
	ErrEmptyResponse = errors.New("respuesta vacía o malformada del servicio de inventario")
	ErrPersistFailed = errors.New("no se pudo persistir el registro de stock")
)
