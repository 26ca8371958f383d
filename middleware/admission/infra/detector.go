package infra

import (
	"sync"
	"time"

	"admission-gateway/middleware/admission/domain"
)

// minTimingSamples: a checagem de rajada só dispara com mais que isso de
// timestamps já retidos na janela. Os primeiros acessos rápidos de um
// cliente (ex.: página carregando vários recursos) passam.
const minTimingSamples = 5

type DetectorConfig struct {
	MaxFailures        int
	MaxPathDiversity   int
	TimingWindow       time.Duration
	MinRequestInterval time.Duration
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MaxFailures:        10,
		MaxPathDiversity:   20,
		TimingWindow:       60 * time.Second,
		MinRequestInterval: 50 * time.Millisecond,
	}
}

// ActivityDetector pontua clientes por três sinais independentes: sequência de
// falhas, diversidade de caminhos e intervalo entre requisições.
//
// Cada sinal tem seu mapa e seu mutex; nenhum método segura mais de um lock
// ao mesmo tempo.
type ActivityDetector struct {
	deps
	cfg DetectorConfig

	failuresMu sync.Mutex
	failures   map[domain.ClientID]int

	pathsMu sync.Mutex
	paths   map[domain.ClientID]map[string]struct{}

	timingMu sync.Mutex
	timing   map[domain.ClientID][]time.Time
}

var _ domain.ActivityDetector = (*ActivityDetector)(nil)

func NewActivityDetector(cfg DetectorConfig, opts ...Option) *ActivityDetector {
	return &ActivityDetector{
		deps:     newDeps("activity_detector", opts),
		cfg:      cfg,
		failures: make(map[domain.ClientID]int),
		paths:    make(map[domain.ClientID]map[string]struct{}),
		timing:   make(map[domain.ClientID][]time.Time),
	}
}

// TrackFailure soma uma falha. Ao atingir MaxFailures o contador é apagado e
// a violação é sinalizada uma única vez. Não há decaimento automático.
func (d *ActivityDetector) TrackFailure(c domain.ClientID) bool {
	d.failuresMu.Lock()
	defer d.failuresMu.Unlock()

	n := d.failures[c] + 1
	if n >= d.cfg.MaxFailures {
		delete(d.failures, c)
		d.log.Warn().Str("client", c.String()).Int("failures", n).Msg("client reached failure threshold")
		return true
	}
	d.failures[c] = n
	return false
}

func (d *ActivityDetector) ResetFailures(c domain.ClientID) {
	d.failuresMu.Lock()
	delete(d.failures, c)
	d.failuresMu.Unlock()
}

// TrackPath registra o caminho no conjunto do cliente. Repetir o mesmo
// caminho não cresce o sinal; muitos caminhos distintos sim (varredura).
func (d *ActivityDetector) TrackPath(c domain.ClientID, path string) bool {
	d.pathsMu.Lock()
	defer d.pathsMu.Unlock()

	set, ok := d.paths[c]
	if !ok {
		set = make(map[string]struct{})
		d.paths[c] = set
	}
	set[path] = struct{}{}

	if n := len(set); n > d.cfg.MaxPathDiversity {
		delete(d.paths, c)
		d.log.Warn().Str("client", c.String()).Int("paths", n).Msg("too many unique paths, possible scanning")
		return true
	}
	return false
}

// TrackTiming poda o histórico para a janela e checa o intervalo desde a
// última requisição retida. Em violação o timestamp atual não é gravado.
func (d *ActivityDetector) TrackTiming(c domain.ClientID) bool {
	now := d.now()

	d.timingMu.Lock()
	defer d.timingMu.Unlock()

	ts, _ := d.prune(d.timing[c], now)

	if n := len(ts); n > minTimingSamples {
		if interval := now.Sub(ts[n-1]); interval < d.cfg.MinRequestInterval {
			d.timing[c] = ts
			d.log.Warn().Str("client", c.String()).Dur("interval", interval).Msg("client is making requests too quickly")
			return true
		}
	}

	d.timing[c] = append(ts, now)
	return false
}

// prune descarta, in-place, timestamps fora da janela. Devolve o slice
// compactado e quantos saíram.
func (d *ActivityDetector) prune(ts []time.Time, now time.Time) ([]time.Time, int) {
	i := 0
	for i < len(ts) && now.Sub(ts[i]) >= d.cfg.TimingWindow {
		i++
	}
	if i == 0 {
		return ts, 0
	}
	n := copy(ts, ts[i:])
	return ts[:n], i
}

// Cleanup zera o histórico de caminhos de todos os clientes e poda o mapa de
// tempos. Contadores de falha não são tocados: só mudam via
// TrackFailure/ResetFailures.
func (d *ActivityDetector) Cleanup() domain.DetectorCleanup {
	var out domain.DetectorCleanup
	now := d.now()

	d.pathsMu.Lock()
	out.PathClients = len(d.paths)
	clear(d.paths)
	d.pathsMu.Unlock()

	d.timingMu.Lock()
	for c, ts := range d.timing {
		kept, pruned := d.prune(ts, now)
		out.TimestampsPruned += pruned
		if len(kept) == 0 {
			delete(d.timing, c)
			out.TimingClientsDropped++
			continue
		}
		d.timing[c] = kept
	}
	d.timingMu.Unlock()

	return out
}

// Failures devolve o contador atual de falhas do cliente (0 se ausente).
func (d *ActivityDetector) Failures(c domain.ClientID) int {
	d.failuresMu.Lock()
	defer d.failuresMu.Unlock()
	return d.failures[c]
}

// HasPathHistory diz se o cliente tem conjunto de caminhos registrado.
func (d *ActivityDetector) HasPathHistory(c domain.ClientID) bool {
	d.pathsMu.Lock()
	defer d.pathsMu.Unlock()
	_, ok := d.paths[c]
	return ok
}

// TimingSamples devolve quantos timestamps o cliente tem retidos.
func (d *ActivityDetector) TimingSamples(c domain.ClientID) int {
	d.timingMu.Lock()
	defer d.timingMu.Unlock()
	return len(d.timing[c])
}
