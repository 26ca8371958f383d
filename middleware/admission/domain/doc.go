// Package domain define contratos e tipos de domínio da camada de admissão.
//
// Este pacote não depende de net/http nem de implementações concretas.
// Identidade do cliente, veredictos, janelas de contagem e as interfaces das
// folhas (limitador global, blacklist, detector de atividade) vivem aqui para
// que a orquestração em application possa ser testada com fakes.
package domain
