// Package application contém os casos de uso da camada de admissão.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Controller.Check(client, path) retorna uma Decision (admit/reject +
// flag de ataque) e Controller.Observe(client, outcome) fecha o ciclo depois
// que o handler downstream respondeu.
package application
