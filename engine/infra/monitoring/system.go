package monitoring

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/plexify/plexify/engine/infra/monitoring/metrics"
	"github.com/plexify/plexify/pkg/logger"
	"github.com/plexify/plexify/pkg/version"
)

var (
	buildInfo          metric.Float64Gauge
	uptimeGauge        metric.Float64ObservableGauge
	uptimeRegistration metric.Registration
	startTime          time.Time
	systemInitOnce     sync.Once
	systemResetMutex   sync.Mutex
)

// initSystemMetrics initializes system health metrics
func initSystemMetrics(meter metric.Meter) {
	systemInitOnce.Do(func() {
		var err error
		buildInfo, err = meter.Float64Gauge(
			metrics.MetricName("build_info"),
			metric.WithDescription("Build information (value=1)"),
		)
		if err != nil {
			logger.Error("Failed to create build info gauge", "error", err)
		}
		// Create observable gauge for uptime
		uptimeGauge, err = meter.Float64ObservableGauge(
			metrics.MetricName("uptime_seconds"),
			metric.WithDescription("Service uptime in seconds"),
		)
		if err != nil {
			logger.Error("Failed to create uptime gauge", "error", err)
			return
		}
		// Record start time for uptime calculation
		startTime = time.Now()
		// Register callback to observe uptime
		uptimeRegistration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			uptime := time.Since(startTime).Seconds()
			o.ObserveFloat64(uptimeGauge, uptime)
			return nil
		}, uptimeGauge)
		if err != nil {
			logger.Error("Failed to register uptime callback", "error", err)
		}
	})
}

// getBuildInfo prefers ldflags values and falls back to the module build info.
func getBuildInfo() (ver, commit, goVersion string) {
	ver = version.GetVersion()
	commit = version.GetCommitHash()
	if info, ok := debug.ReadBuildInfo(); ok {
		if ver == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			ver = info.Main.Version
		}
		if commit == "unknown" {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					commit = setting.Value
					break
				}
			}
		}
	}
	return ver, commit, runtime.Version()
}

// recordBuildInfo records build information as a gauge metric with labels
func recordBuildInfo(ctx context.Context) {
	if buildInfo == nil {
		return
	}
	ver, commit, goVersion := getBuildInfo()
	buildInfo.Record(ctx, 1,
		metric.WithAttributes(
			attribute.String("version", ver),
			attribute.String("commit_hash", commit),
			attribute.String("go_version", goVersion),
		),
	)
	logger.FromContext(ctx).Info("System metrics initialized",
		"version", ver,
		"commit", commit,
		"go_version", goVersion,
	)
}

// InitSystemMetrics initializes system health metrics and records build info
func InitSystemMetrics(ctx context.Context, meter metric.Meter) {
	initSystemMetrics(meter)
	recordBuildInfo(ctx)
}

// resetSystemMetrics is used for testing purposes only
func resetSystemMetrics() {
	// Unregister callback if it exists
	if uptimeRegistration != nil {
		err := uptimeRegistration.Unregister()
		if err != nil {
			logger.Error("Failed to unregister uptime callback during reset", "error", err)
		}
		uptimeRegistration = nil
	}
	buildInfo = nil
	uptimeGauge = nil
	startTime = time.Time{}
	systemInitOnce = sync.Once{}
}

// ResetSystemMetricsForTesting resets the system metrics initialization state for testing
// This should only be used in tests to ensure clean state between test runs
func ResetSystemMetricsForTesting() {
	systemResetMutex.Lock()
	defer systemResetMutex.Unlock()
	resetSystemMetrics()
}
