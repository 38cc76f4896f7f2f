package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: pool, snapshot ou palpite inexistente. Não adianta repetir.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable: falha de acesso a algum store. Recalcular de novo é seguro.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Upstream embrulha uma falha de driver mantendo o sentinel e o erro original
func Upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}

// NotFound gera um ErrNotFound com contexto
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
