package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	restores = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_backup_restores_total",
		Help: "Backups restored over a live document",
	}, []string{"kind"})

	prunedBackups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_backups_pruned_total",
		Help: "Backup files removed by the retention policy",
	}, []string{"kind"})
)
