package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Example_basicUsage demonstrates basic metrics configuration.
func Example_basicUsage() {
	// Create a separate registry for this test
	testRegistry := prometheus.NewRegistry()
	registry := NewRegistry(testRegistry)

	registry.ClosuresScheduled.WithLabelValues("worker-0").Add(34)
	registry.ClosuresExecuted.WithLabelValues("worker-0").Add(34)
	registry.ClosuresEvicted.WithLabelValues("worker-0").Add(2)

	fmt.Printf("scheduled: %.0f\n", testutil.ToFloat64(registry.ClosuresScheduled.WithLabelValues("worker-0")))
	fmt.Printf("evicted: %.0f\n", testutil.ToFloat64(registry.ClosuresEvicted.WithLabelValues("worker-0")))

	// Output:
	// scheduled: 34
	// evicted: 2
}

// Example_customNamespace demonstrates overriding the namespace and adding constant labels.
func Example_customNamespace() {
	customRegistry := prometheus.NewRegistry()

	config := Config{
		Enabled:   true,
		Registry:  customRegistry,
		Namespace: "myapp",
		Labels:    prometheus.Labels{"region": "eu"},
	}
	registry := NewRegistryWithConfig(config)
	registry.QueueCapacity.WithLabelValues("io").Set(32)

	families, _ := customRegistry.Gather()
	for _, mf := range families {
		fmt.Println(mf.GetName())
	}

	// Output:
	// myapp_queue_capacity
}

// Example_configuration demonstrates different metrics configurations.
func Example_configuration() {
	defaultConfig := DefaultConfig()
	fmt.Printf("Default enabled: %v\n", defaultConfig.Enabled)
	fmt.Printf("Default namespace: %s\n", defaultConfig.Namespace)

	customConfig := Config{
		Enabled:   false,
		Namespace: "myapp",
	}
	fmt.Printf("Custom enabled: %v\n", customConfig.Enabled)
	fmt.Printf("Custom namespace: %s\n", customConfig.Namespace)

	// Output:
	// Default enabled: true
	// Default namespace: tasklane
	// Custom enabled: false
	// Custom namespace: myapp
}
