package domain

// Verdict é o resultado terminal de uma checagem de admissão.
//
// Rejeições são fluxo de controle esperado, não erros.
type Verdict uint8

const (
	Admit Verdict = iota
	RejectMalformed
	RejectBlacklisted
	RejectScan
	RejectBurst
	RejectOverload
	// RejectThrottled vem do limitador por cliente (token bucket), não do controller.
	RejectThrottled
)

var verdictNames = [...]string{
	Admit:             "admit",
	RejectMalformed:   "malformed",
	RejectBlacklisted: "blacklisted",
	RejectScan:        "scan",
	RejectBurst:       "burst",
	RejectOverload:    "overload",
	RejectThrottled:   "throttled",
}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return "unknown"
}

func (v Verdict) Allowed() bool { return v == Admit }

// Verdicts lista todos os veredictos conhecidos, na ordem de declaração.
func Verdicts() []Verdict {
	out := make([]Verdict, len(verdictNames))
	for i := range verdictNames {
		out[i] = Verdict(i)
	}
	return out
}

// Decision é o que o controller devolve para a camada HTTP.
type Decision struct {
	Client  ClientID
	Verdict Verdict
	// UnderAttack reflete o flag global no momento da checagem. Só é
	// preenchido quando a checagem chegou até o limitador global.
	UnderAttack bool
}

// Outcome classifica a resposta do handler downstream.
type Outcome uint8

const (
	OutcomeSuccess Outcome = iota
	OutcomeClientError
	OutcomeServerError
	// OutcomeAborted: o handler nunca resolveu uma resposta (cancelado ou pânico).
	OutcomeAborted
)

// Failed diz se o outcome conta para a sequência de falhas do cliente.
func (o Outcome) Failed() bool { return o != OutcomeSuccess }

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeClientError:
		return "client_error"
	case OutcomeServerError:
		return "server_error"
	case OutcomeAborted:
		return "aborted"
	}
	return "unknown"
}

// OutcomeFromStatus classifica um status HTTP numérico.
// 0 significa "nada escrito"; quem chama decide se isso é sucesso implícito.
func OutcomeFromStatus(status int) Outcome {
	switch {
	case status >= 500:
		return OutcomeServerError
	case status >= 400:
		return OutcomeClientError
	default:
		return OutcomeSuccess
	}
}
