package catalogsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/rs/zerolog"
)

// FetchFunc trae la página que sigue a after.
type FetchFunc[T any] func(ctx context.Context, after string) (catalog.Page[T], error)

// Pager iterador hacia adelante sobre una conexión paginada por cursor. El cursor solo avanza
// después de que el callback aceptó la página, así Cursor() siempre apunta a la última página
// confirmada y sirve para reanudar.
type Pager[T any] struct {
	name          string
	fetch         FetchFunc[T]
	cursor        string
	hasNext       bool
	requireCursor bool
	log           zerolog.Logger
}

// NewPager crea un pager que empieza después de start (vacío = desde el inicio).
func NewPager[T any](name string, fetch FetchFunc[T], start string, log zerolog.Logger) *Pager[T] {
	return &Pager[T]{
		name:          name,
		fetch:         fetch,
		cursor:        start,
		hasNext:       true,
		requireCursor: start != "",
		log:           log,
	}
}

// ContinueFrom crea un pager que sigue a una primera página ya recibida embebida en otra query.
func ContinueFrom[T any](name string, fetch FetchFunc[T], first catalog.Page[T], log zerolog.Logger) *Pager[T] {
	return &Pager[T]{
		name:          name,
		fetch:         fetch,
		cursor:        first.EndCursor,
		hasNext:       first.HasNextPage,
		requireCursor: true,
		log:           log,
	}
}

// HasNext indica si queda al menos una página por pedir.
func (p *Pager[T]) HasNext() bool { return p.hasNext }

// Cursor devuelve el endCursor de la última página confirmada.
func (p *Pager[T]) Cursor() string { return p.cursor }

// Each pide páginas en orden y entrega cada una a fn. Un error de transporte, de forma o del
// propio fn detiene la paginación y se devuelve.
func (p *Pager[T]) Each(ctx context.Context, fn func(ctx context.Context, page catalog.Page[T]) error) error {
	for p.hasNext {
		if p.requireCursor && p.cursor == "" {
			return p.halt(fmt.Errorf("%w: %s con hasNextPage sin endCursor", domain.ErrMalformedPage, p.name))
		}
		if err := ctx.Err(); err != nil {
			p.hasNext = false
			return err
		}

		page, err := p.fetch(ctx, p.cursor)
		if err != nil {
			return p.halt(err)
		}
		if page.HasNextPage && (page.EndCursor == "" || page.EndCursor == p.cursor) {
			return p.halt(fmt.Errorf("%w: %s repite o no trae endCursor (%q)", domain.ErrMalformedPage, p.name, page.EndCursor))
		}

		if err := fn(ctx, page); err != nil {
			p.hasNext = false
			return err
		}

		if page.EndCursor != "" {
			p.cursor = page.EndCursor
		}
		p.hasNext = page.HasNextPage
		p.requireCursor = true
	}
	return nil
}

// Collect recorre todas las páginas restantes y devuelve sus ítems en orden.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	err := p.Each(ctx, func(_ context.Context, page catalog.Page[T]) error {
		items = append(items, page.Items...)
		return nil
	})
	return items, err
}

func (p *Pager[T]) halt(err error) error {
	p.hasNext = false
	switch {
	case errors.Is(err, domain.ErrMalformedPage):
		p.log.Warn().Err(err).Str("connection", p.name).Str("cursor", p.cursor).Msg("página malformada, se detiene la paginación")
	case errors.Is(err, domain.ErrRateLimited):
		p.log.Warn().Err(err).Str("connection", p.name).Str("cursor", p.cursor).Msg("la API sigue limitando tras el reintento, se detiene la paginación")
	}
	return fmt.Errorf("paginar %s: %w", p.name, err)
}
