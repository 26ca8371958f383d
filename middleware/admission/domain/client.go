package domain

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

var (
	// ErrMalformedClient indica que a identidade do cliente não é um IP válido.
	ErrMalformedClient = errors.New("malformed client identity")
	// ErrMissingComponent indica que uma folha obrigatória não foi informada.
	ErrMissingComponent = errors.New("missing admission component")
)

// ClientID é o endereço de origem resolvido de uma requisição.
//
// É a chave de todo estado por cliente. Cada folha mantém seu próprio mapa
// indexado por ClientID; nenhuma delas é dona da identidade.
type ClientID netip.Addr

// ParseClientID converte a representação textual (já extraída do header) em
// ClientID. Endereços IPv4 mapeados em IPv6 (::ffff:a.b.c.d) são normalizados
// para IPv4.
func ParseClientID(raw string) (ClientID, error) {
	s := strings.TrimSpace(raw)
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ClientID{}, fmt.Errorf("%w: %q", ErrMalformedClient, s)
	}
	return ClientID(addr.Unmap()), nil
}

// MustParseClientID é o equivalente de ParseClientID que entra em pânico.
// Útil em testes e constantes.
func MustParseClientID(raw string) ClientID {
	c, err := ParseClientID(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClientID) Addr() netip.Addr { return netip.Addr(c) }
func (c ClientID) IsValid() bool    { return netip.Addr(c).IsValid() }

func (c ClientID) String() string {
	if !c.IsValid() {
		return "invalid"
	}
	return netip.Addr(c).String()
}
