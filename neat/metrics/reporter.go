// Package metrics exports population progress as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baldhumanity/neatevo/neat"
)

const namespace = "neat"

// Reporter is a neat.Reporter that updates a private registry, labelled by run.
type Reporter struct {
	registry *prometheus.Registry
	run      string

	generations *prometheus.CounterVec
	extinctions *prometheus.CounterVec
	culled      *prometheus.CounterVec
	best        *prometheus.GaugeVec
	bestEver    *prometheus.GaugeVec
	mean        *prometheus.GaugeVec
	species     *prometheus.GaugeVec
	threshold   *prometheus.GaugeVec
	innovations *prometheus.GaugeVec
	meanGenes   *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
}

var runLabel = []string{"run"}

func NewReporter(run string) *Reporter {
	r := &Reporter{
		registry: prometheus.NewRegistry(),
		run:      run,
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "generations_total", Help: "Completed generations.",
		}, runLabel),
		extinctions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "extinctions_total", Help: "Times the population was regenerated from scratch.",
		}, runLabel),
		culled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "species_culled_total", Help: "Species removed for staleness.",
		}, runLabel),
		best: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "best_fitness", Help: "Best raw fitness of the last generation.",
		}, runLabel),
		bestEver: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "best_fitness_ever", Help: "Best raw fitness seen so far.",
		}, runLabel),
		mean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "mean_fitness", Help: "Mean raw fitness of the last generation.",
		}, runLabel),
		species: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "species", Help: "Species after speciation.",
		}, runLabel),
		threshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "difference_threshold", Help: "Current speciation distance threshold.",
		}, runLabel),
		innovations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "innovations", Help: "Innovation markers handed out so far.",
		}, runLabel),
		meanGenes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "mean_genes", Help: "Mean genome size of the new generation.",
		}, runLabel),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "generation_duration_seconds", Help: "Wall time of one generation.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, runLabel),
	}
	r.registry.MustRegister(
		r.generations, r.extinctions, r.culled,
		r.best, r.bestEver, r.mean, r.species, r.threshold, r.innovations, r.meanGenes,
		r.duration,
	)
	return r
}

// Registry returns the registry holding the reporter's metrics.
func (r *Reporter) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Reporter) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Reporter) GenerationCompleted(stats neat.GenerationStats) {
	labels := prometheus.Labels{"run": r.run}
	r.generations.With(labels).Inc()
	r.culled.With(labels).Add(float64(stats.Culled))
	r.best.With(labels).Set(stats.BestFitness)
	r.bestEver.With(labels).Set(stats.BestEver)
	r.mean.With(labels).Set(stats.MeanFitness)
	r.species.With(labels).Set(float64(stats.Species))
	r.threshold.With(labels).Set(stats.Threshold)
	r.innovations.With(labels).Set(float64(stats.Innovations))
	r.meanGenes.With(labels).Set(stats.MeanGenes)
	r.duration.With(labels).Observe(stats.Duration.Seconds())
}

func (r *Reporter) Extinction(int) {
	r.extinctions.With(prometheus.Labels{"run": r.run}).Inc()
}
