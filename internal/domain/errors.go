package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrShopNotFound   = errors.New("tienda no encontrada")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrMalformedPage  = errors.New("página externa con forma inesperada")
	ErrSyncInProgress = errors.New("ya hay una sincronización en curso para la tienda")
	ErrLockLost       = errors.New("se perdió el lock de la tienda")
	ErrRateLimited    = errors.New("la API externa rechazó la petición por límite de uso")
)
