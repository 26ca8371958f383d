package admission

import (
	"net/http"

	"admission-gateway/middleware/admission/domain"
)

// statusRecorder guarda o status final escrito pelo handler downstream.
// Respostas 1xx (ex.: 103 Early Hints) passam adiante sem contar.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	underAttack bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 && code >= http.StatusOK {
		w.status = code
		w.setHeaders()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
		w.setHeaders()
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if w.status == 0 {
			w.status = http.StatusOK
			w.setHeaders()
		}
		f.Flush()
	}
}

// Unwrap permite que http.ResponseController alcance o writer original.
func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// setHeaders sobrescreve o que o downstream tenha mandado nesses headers.
func (w *statusRecorder) setHeaders() {
	h := w.ResponseWriter.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	if w.underAttack {
		h.Set("X-Under-Attack-Mode", "true")
	}
}

// finish cobre o handler que retorna sem escrever: o 200 implícito do
// net/http sai depois, com os headers já no mapa.
func (w *statusRecorder) finish() {
	if w.status == 0 {
		w.setHeaders()
	}
}

// outcome classifica o que o handler fez. Sem status final escrito, um
// contexto cancelado vira Aborted; caso contrário net/http responde 200
// implícito.
func (w *statusRecorder) outcome(r *http.Request) domain.Outcome {
	if w.status == 0 {
		if r.Context().Err() != nil {
			return domain.OutcomeAborted
		}
		return domain.OutcomeSuccess
	}
	return domain.OutcomeFromStatus(w.status)
}
