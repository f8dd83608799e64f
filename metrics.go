package parwork

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Executors are prometheus collectors; register one to export its counters:
//
//	exec := parwork.New(4)
//	prometheus.MustRegister(exec)
var (
	jobsSubmittedDesc = prometheus.NewDesc(
		"parwork_jobs_submitted_total",
		"Number of jobs submitted to the executor.",
		[]string{"executor"}, nil)
	jobsCompletedDesc = prometheus.NewDesc(
		"parwork_jobs_completed_total",
		"Number of jobs whose execution has finished, panicking or not.",
		[]string{"executor"}, nil)
	jobsStolenDesc = prometheus.NewDesc(
		"parwork_jobs_stolen_total",
		"Number of jobs transferred between queues by work stealing.",
		[]string{"executor"}, nil)
	stealsDesc = prometheus.NewDesc(
		"parwork_steals_total",
		"Number of successful steal operations.",
		[]string{"executor"}, nil)
	queueDepthDesc = prometheus.NewDesc(
		"parwork_queue_depth",
		"Number of jobs currently queued, per worker queue.",
		[]string{"executor", "queue"}, nil)
	workersDesc = prometheus.NewDesc(
		"parwork_workers",
		"Number of worker goroutines, including released ones.",
		[]string{"executor"}, nil)
)

// Describe implements prometheus.Collector.
func (e *Executor) Describe(ch chan<- *prometheus.Desc) {
	ch <- jobsSubmittedDesc
	ch <- jobsCompletedDesc
	ch <- jobsStolenDesc
	ch <- stealsDesc
	ch <- queueDepthDesc
	ch <- workersDesc
}

// Collect implements prometheus.Collector.
func (e *Executor) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(jobsSubmittedDesc,
		prometheus.CounterValue, float64(e.submitted.Load()), e.id)
	ch <- prometheus.MustNewConstMetric(jobsCompletedDesc,
		prometheus.CounterValue, float64(e.completed.Load()), e.id)
	ch <- prometheus.MustNewConstMetric(jobsStolenDesc,
		prometheus.CounterValue, float64(e.stolen.Load()), e.id)
	ch <- prometheus.MustNewConstMetric(stealsDesc,
		prometheus.CounterValue, float64(e.steals.Load()), e.id)
	for i, q := range e.queues {
		ch <- prometheus.MustNewConstMetric(queueDepthDesc,
			prometheus.GaugeValue, float64(q.depth()), e.id, strconv.Itoa(i))
	}
	e.workerMu.Lock()
	workers := len(e.allWorkers)
	e.workerMu.Unlock()
	ch <- prometheus.MustNewConstMetric(workersDesc,
		prometheus.GaugeValue, float64(workers), e.id)
}
