// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - GlobalRateLimiter, IPBlacklist, ActivityDetector: folhas em memória, um mutex por mapa
//   - PrefixWhitelist: faixas de endereço isentas do modo ataque
//   - ThrottleStore: token bucket por cliente usando golang.org/x/time/rate
//   - Memory/Redis/Prometheus stats: destinos das estatísticas de decisão
package infra
