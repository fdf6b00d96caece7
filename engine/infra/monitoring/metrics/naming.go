package metrics

import "strings"

const namespace = "plexify"

// MetricName prefixes name with the service namespace unless it already carries it.
func MetricName(name string) string {
	if strings.HasPrefix(name, namespace+"_") {
		return name
	}
	return namespace + "_" + name
}

// MetricNameWithSubsystem joins subsystem and name under the service namespace.
func MetricNameWithSubsystem(subsystem, name string) string {
	if strings.HasPrefix(name, namespace+"_") {
		return name
	}
	subsystem = strings.Trim(subsystem, "_")
	switch {
	case subsystem == "":
		return MetricName(name)
	case name == "":
		return MetricName(subsystem)
	default:
		return MetricName(subsystem + "_" + name)
	}
}
