package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var jobsQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jobdeck_jobs_queries_total",
	Help: "Job feed queries served, labelled by plan mode.",
}, []string{"plan"})
