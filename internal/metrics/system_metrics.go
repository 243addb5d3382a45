package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// MetricsManager owns the registry every metric family in this package registers with
type MetricsManager struct {
	registry *prometheus.Registry

	hostOnce sync.Once
	hostCPU  *prometheus.GaugeVec
	hostMem  *prometheus.GaugeVec
}

var (
	instance *MetricsManager
	once     sync.Once
)

// GetInstance returns the singleton instance of MetricsManager
func GetInstance() *MetricsManager {
	once.Do(func() {
		instance = &MetricsManager{
			registry: prometheus.NewRegistry(),
		}
	})
	return instance
}

// Handler serves the registry in the prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(GetInstance().registry, promhttp.HandlerOpts{})
}

// registerHost adds the host gauges and the Go runtime and process collectors once.
func (mm *MetricsManager) registerHost() {
	mm.hostOnce.Do(func() {
		mm.hostCPU = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ward_host_cpu_usage_percent",
			Help: "CPU usage percentage per core of the host running the view server",
		}, []string{"core"})
		mm.hostMem = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ward_host_memory_bytes",
			Help: "Host memory by state",
		}, []string{"state"})

		mm.registry.MustRegister(
			mm.hostCPU,
			mm.hostMem,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// sampleHost reads CPU and memory from gopsutil. Read failures keep the last values.
func (mm *MetricsManager) sampleHost() {
	if perCore, err := cpu.Percent(0, true); err == nil {
		for i, pct := range perCore {
			mm.hostCPU.WithLabelValues("cpu" + strconv.Itoa(i)).Set(pct)
		}
	} else {
		log.Debug().Err(err).Msg("CPU sample failed")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		mm.hostMem.WithLabelValues("total").Set(float64(vm.Total))
		mm.hostMem.WithLabelValues("available").Set(float64(vm.Available))
		mm.hostMem.WithLabelValues("used").Set(float64(vm.Used))
	} else {
		log.Debug().Err(err).Msg("Memory sample failed")
	}
}

// StartSystemMetrics samples host metrics every interval until ctx is done.
// It does nothing unless system metrics are enabled.
func StartSystemMetrics(ctx context.Context, interval time.Duration) {
	if !SystemEnabled() {
		return
	}

	mm := GetInstance()
	mm.registerHost()
	mm.sampleHost()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mm.sampleHost()
			}
		}
	}()
}
