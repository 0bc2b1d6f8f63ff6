package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_document_saves_total",
		Help: "Menu documents written to disk",
	}, []string{"kind"})

	saveErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_document_save_errors_total",
		Help: "Menu document writes that failed",
	}, []string{"kind"})

	blockedDeletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_category_deletes_blocked_total",
		Help: "Category removals rejected because dishes still reference them",
	})
)
