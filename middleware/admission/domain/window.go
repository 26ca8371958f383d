package domain

import "time"

// Window é um contador de janela fixa {início, duração, acumulador}.
//
// Não lê relógio nenhum: quem chama passa `now`, o que deixa o rollover
// testável com relógio injetado.
type Window struct {
	Start    time.Time
	Duration time.Duration
	Count    int
}

func NewWindow(start time.Time, d time.Duration) Window {
	return Window{Start: start, Duration: d}
}

// MaybeRollover encerra a janela quando `now` já está a Duration ou mais de
// Start. Nesse caso devolve a taxa observada (Count / segundos decorridos),
// zera o contador e reinicia a janela em `now`.
func (w *Window) MaybeRollover(now time.Time) (rate float64, rolled bool) {
	elapsed := now.Sub(w.Start)
	if elapsed < w.Duration {
		return 0, false
	}
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(w.Count) / secs
	}
	w.Start = now
	w.Count = 0
	return rate, true
}

// Add soma uma requisição na janela corrente e devolve o novo total.
func (w *Window) Add() int {
	w.Count++
	return w.Count
}
