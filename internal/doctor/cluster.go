package doctor

import (
	"context"
	"fmt"

	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/util"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

// Connector is satisfied by cluster.Source.
type Connector interface {
	Connect(ctx context.Context) error
}

// ClusterConnectCheck lists pods in the namespace once.
type ClusterConnectCheck struct {
	Namespace string
	Source    Connector

	// ClientErr is reported when the clients could not be built at all.
	ClientErr error
}

func (c *ClusterConnectCheck) Name() string     { return "cluster_connect" }
func (c *ClusterConnectCheck) Category() string { return CategoryCluster }

func (c *ClusterConnectCheck) Run(ctx context.Context) CheckResult {
	if c.ClientErr != nil || c.Source == nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Kubernetes client not configured: " + errors.Summary(c.ClientErr),
			Suggestion: "Check kubernetes.use_kubeconfig, KUBECONFIG or run inside a pod",
		}
	}

	if err := c.Source.Connect(ctx); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Summary(err),
			Suggestion: "Check the cluster is reachable: kubectl get pods -n " + c.Namespace,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Connected, namespace %s readable", c.Namespace),
	}
}

func (c *ClusterConnectCheck) Fix() error { return nil }

// MetricsAPICheck probes metrics.k8s.io. Without it the usage metrics fall
// back to request estimates, which only matters for usage_source
// metrics-server.
type MetricsAPICheck struct {
	Namespace   string
	UsageSource string
	Metrics     metricsclient.Interface
}

func (c *MetricsAPICheck) Name() string     { return "metrics_api" }
func (c *MetricsAPICheck) Category() string { return CategoryCluster }

func (c *MetricsAPICheck) Run(ctx context.Context) CheckResult {
	unavailable := StatusPass
	if c.UsageSource == config.UsageSourceMetricsServer {
		unavailable = StatusWarn
	}

	if c.Metrics == nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  unavailable,
			Message: "Metrics API client not configured, usage is estimated from requests",
		}
	}

	list, err := c.Metrics.MetricsV1beta1().PodMetricses(c.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     unavailable,
			Message:    "Metrics API unavailable, usage is estimated from requests: " + err.Error(),
			Suggestion: "Install metrics-server or set monitoring.usage_source to requests",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Metrics API reachable, " + util.Count(len(list.Items), "pod sample", "pod samples"),
	}
}

func (c *MetricsAPICheck) Fix() error { return nil }
