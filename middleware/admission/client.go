package admission

import (
	"context"
	"net"
	"net/http"
	"strings"

	"admission-gateway/middleware/admission/domain"
)

// ClientFunc extrai o texto bruto da identidade do cliente. A validação
// (IP ou não) fica com o Controller.
type ClientFunc func(r *http.Request) string

// DefaultClientFunc usa o primeiro item do X-Forwarded-For (cliente
// original atrás do proxy). Com trustRemoteAddr, cai para o host do
// RemoteAddr quando o header não vem.
func DefaultClientFunc(trustRemoteAddr bool) ClientFunc {
	return func(r *http.Request) string {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}

		if !trustRemoteAddr {
			return ""
		}
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil {
			return host
		}
		return r.RemoteAddr
	}
}

type admissionKey struct{}

// admitted é o estado da requisição admitida, visível para os middlewares
// internos. verdict pode virar RejectThrottled antes do registro final.
type admitted struct {
	client  domain.ClientID
	verdict domain.Verdict
}

func withAdmitted(ctx context.Context, a *admitted) context.Context {
	return context.WithValue(ctx, admissionKey{}, a)
}

func admittedFrom(ctx context.Context) (*admitted, bool) {
	a, ok := ctx.Value(admissionKey{}).(*admitted)
	return a, ok
}

// ClientFromContext devolve o cliente admitido pelo Middleware.
func ClientFromContext(ctx context.Context) (domain.ClientID, bool) {
	a, ok := admittedFrom(ctx)
	if !ok {
		return domain.ClientID{}, false
	}
	return a.client, true
}
