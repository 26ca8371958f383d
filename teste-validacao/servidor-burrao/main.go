package main

import (
	"fmt"
	"net/http"
	"strconv"

	"admission-gateway/internal/logging"
)

// Upstream "burro" para validar o gateway na mão: uma rota que sempre
// funciona e rotas que devolvem 4xx/5xx para exercitar a sequência de falhas.
func main() {
	logging.Init(logging.Config{Format: "console"})
	log := logging.Component("servidor-burrao")

	http.HandleFunc("/showTela", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<h1>Tela do Sistema</h1><p>Requisição recebida com sucesso!</p>")
		log.Info().Str("xff", r.Header.Get("X-Forwarded-For")).Msg("alguém acessou /showTela")
	})
	http.HandleFunc("/naoExiste", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	http.HandleFunc("/quebrado", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "falha simulada", http.StatusInternalServerError)
	})
	// /status?code=418
	http.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.URL.Query().Get("code"))
		if err != nil || code < 100 || code > 599 {
			code = http.StatusOK
		}
		w.WriteHeader(code)
	})

	log.Info().Msg("servidor rodando em http://localhost:8081")
	if err := http.ListenAndServe(":8081", nil); err != nil {
		log.Error().Err(err).Msg("erro ao subir o servidor")
	}
}
