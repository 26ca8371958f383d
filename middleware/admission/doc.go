// Package admission fornece adapters HTTP (net/http) para a camada de
// admissão adaptativa e para o limite por cliente.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: Controller (ordem das checagens, efeitos colaterais,
//     manutenção) e ThrottleService, sem net/http
//   - infra: implementações concretas (janela global, blacklist, detector,
//     token bucket, stores de estatística)
//   - admission (este pacote): middlewares HTTP, extração do cliente e
//     tradução de veredicto para status/headers
//
// Fluxo no gateway:
//
//  1. Extrai o cliente do X-Forwarded-For (ou RemoteAddr, se habilitado)
//  2. Pede ao Controller um veredicto
//  3. Se rejeitado, responde 400/403/503 com texto fixo
//  4. Se admitido, chama o próximo handler e reporta o resultado (sucesso
//     ou falha) de volta ao Controller
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam os
// limiares, como ADMISSION_GLOBAL_MAX_REQUESTS e ADMISSION_MAX_FAILURES.
package admission
