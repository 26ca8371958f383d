package domain

// Camada de domínio da admissão: contratos das três folhas.
//
// Cada implementação protege seu estado com o próprio lock. A ordem entre
// folhas é responsabilidade de quem orquestra, não do locking.

// GlobalLimiter acompanha o volume agregado de todos os clientes.
type GlobalLimiter interface {
	// TrackRequest contabiliza uma requisição e devolve o flag de ataque atual.
	TrackRequest() bool
	IsUnderAttack() bool
	// CurrentRate é a última taxa calculada num rollover (req/s).
	CurrentRate() float64
}

// Blacklist é uma lista de bloqueio com expiração.
type Blacklist interface {
	IsBlacklisted(ClientID) bool
	// Blacklist insere ou sobrescreve a entrada, reiniciando a penalidade.
	Blacklist(ClientID)
	// Cleanup remove entradas expiradas e devolve quantas saíram.
	Cleanup() int
	Len() int
}

// ActivityDetector pontua cada cliente por três sinais independentes.
// Todo método que devolve bool sinaliza uma violação.
type ActivityDetector interface {
	TrackFailure(ClientID) bool
	ResetFailures(ClientID)
	TrackPath(ClientID, string) bool
	TrackTiming(ClientID) bool
	Cleanup() DetectorCleanup
}

// Whitelist isenta clientes apenas do estrangulamento por ataque global.
type Whitelist interface {
	Contains(ClientID) bool
}

// DetectorCleanup resume uma passada de limpeza do detector.
type DetectorCleanup struct {
	// PathClients é quantos clientes tinham histórico de caminhos (sempre limpo por inteiro).
	PathClients int
	// TimestampsPruned é quantos timestamps caíram fora da janela.
	TimestampsPruned int
	// TimingClientsDropped é quantos clientes ficaram sem timestamps e saíram do mapa.
	TimingClientsDropped int
}

// Removed diz se a passada alterou algum estado.
func (c DetectorCleanup) Removed() bool {
	return c.PathClients > 0 || c.TimestampsPruned > 0 || c.TimingClientsDropped > 0
}
