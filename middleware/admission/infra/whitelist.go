package infra

import (
	"fmt"
	"net/netip"
	"strings"

	"admission-gateway/middleware/admission/domain"
)

// PrefixWhitelist isenta faixas de endereço do estrangulamento em modo ataque.
// Blacklist e heurísticas por cliente continuam valendo para elas.
type PrefixWhitelist struct {
	prefixes []netip.Prefix
}

var _ domain.Whitelist = (*PrefixWhitelist)(nil)

// DefaultWhitelistCIDRs: loopback e faixas privadas RFC1918. Sem isenções IPv6.
var DefaultWhitelistCIDRs = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

func NewPrefixWhitelist(prefixes ...netip.Prefix) *PrefixWhitelist {
	out := make([]netip.Prefix, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.Masked())
	}
	return &PrefixWhitelist{prefixes: out}
}

// ParseWhitelist monta a whitelist a partir de CIDRs textuais.
func ParseWhitelist(cidrs []string) (*PrefixWhitelist, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, raw := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid whitelist prefix %q: %w", raw, err)
		}
		prefixes = append(prefixes, p)
	}
	return NewPrefixWhitelist(prefixes...), nil
}

func DefaultWhitelist() *PrefixWhitelist {
	w, err := ParseWhitelist(DefaultWhitelistCIDRs)
	if err != nil {
		panic(err)
	}
	return w
}

func (w *PrefixWhitelist) Contains(c domain.ClientID) bool {
	addr := c.Addr()
	for _, p := range w.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
