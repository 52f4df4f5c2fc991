package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// #region recorder
// Recorder owns a registry and the lexseg collectors registered in it. A nil
// *Recorder accepts every call and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	utterances      *prometheus.CounterVec
	penalties       *prometheus.CounterVec
	lexiconWords    *prometheus.GaugeVec
	beamPeak        prometheus.Histogram
	segmentDuration prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
}

// NewRecorder registers the lexseg collectors in a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		// utterances counts segmented utterances by condition and phase
		utterances: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexseg_utterances_total",
			Help: "Total segmented utterances by condition and phase",
		}, []string{"condition", "phase"}),
		penalties: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexseg_penalties_total",
			Help: "Total lexicon penalties by condition",
		}, []string{"condition"}),
		lexiconWords: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lexseg_lexicon_words",
			Help: "Number of words in the learned lexicon",
		}, []string{"condition"}),
		beamPeak: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexseg_beam_peak",
			Help:    "Largest beam per segmented utterance",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		}),
		segmentDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexseg_segment_duration_seconds",
			Help:    "Service segmentation latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10us to ~80ms
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexseg_cache_lookups_total",
			Help: "Service result cache lookups by result",
		}, []string{"result"}), // "hit" or "miss"
	}
}

// Registry returns the registry the collectors live in.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// #endregion recorder

// #region observe
// ObserveUtterance records one segmented utterance.
func (r *Recorder) ObserveUtterance(condition, phase string, beamPeak int, penalized bool) {
	if r == nil {
		return
	}
	r.utterances.WithLabelValues(condition, phase).Inc()
	if beamPeak > 0 {
		r.beamPeak.Observe(float64(beamPeak))
	}
	if penalized {
		r.penalties.WithLabelValues(condition).Inc()
	}
}

// SetLexiconWords records the current lexicon size of a condition.
func (r *Recorder) SetLexiconWords(condition string, n int) {
	if r == nil {
		return
	}
	r.lexiconWords.WithLabelValues(condition).Set(float64(n))
}

// ObserveSegment records the latency of one service call.
func (r *Recorder) ObserveSegment(d time.Duration) {
	if r == nil {
		return
	}
	r.segmentDuration.Observe(d.Seconds())
}

// CacheLookup records a result cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		r.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// #endregion observe
