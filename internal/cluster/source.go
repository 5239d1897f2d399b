package cluster

import (
	"context"
	"strconv"

	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	"github.com/sonify-k8s/sonify-k8s/internal/sonify"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

// Sample is one raw metric value with descriptive extras.
type Sample struct {
	Value float64
	Extra map[string]string
}

// Pod phase indices fed to the pod_status note table.
const (
	statusRunning = 3.0
	statusPending = 1.0
	statusFailed  = 0.0
)

// Fallback usage percentages when pods exist but none declare requests.
const (
	defaultCPUPercent    = 30.0
	defaultMemoryPercent = 40.0
)

const mebibyte = 1024 * 1024

// pressureConditions are the node conditions that count as pressure when True.
var pressureConditions = []corev1.NodeConditionType{
	corev1.NodeMemoryPressure,
	corev1.NodeDiskPressure,
	corev1.NodePIDPressure,
	corev1.NodeNetworkUnavailable,
}

// Source derives sonify-k8s metrics from one namespace.
type Source struct {
	kube        kubernetes.Interface
	metrics     metricsclient.Interface
	namespace   string
	usageSource string
	log         logger.Logger
}

// NewSource creates a Source. metrics may be nil, in which case the
// metrics-server usage source falls back to request estimates.
func NewSource(kube kubernetes.Interface, metrics metricsclient.Interface, namespace, usageSource string, log logger.Logger) *Source {
	if log == nil {
		log = logger.Noop()
	}
	if usageSource == "" {
		usageSource = config.UsageSourceRequests
	}
	return &Source{
		kube:        kube,
		metrics:     metrics,
		namespace:   namespace,
		usageSource: usageSource,
		log:         log,
	}
}

// Namespace returns the namespace being sampled.
func (s *Source) Namespace() string {
	return s.namespace
}

// Connect lists pods once to confirm the API server is reachable and the
// namespace is readable.
func (s *Source) Connect(ctx context.Context) error {
	if _, err := s.kube.CoreV1().Pods(s.namespace).List(ctx, metav1.ListOptions{}); err != nil {
		return errors.WrapWithCode(err, errors.ErrCluster,
			"Couldn't connect to the Kubernetes cluster",
			"Check your kubeconfig context and that namespace "+s.namespace+" exists")
	}
	s.log.Info("Successfully connected to Kubernetes cluster")
	return nil
}

// PodsStatus maps the first pod's phase to a status index.
func (s *Source) PodsStatus(ctx context.Context) (Sample, error) {
	pods, err := s.listPods(ctx)
	if err != nil {
		return Sample{}, err
	}

	if len(pods) == 0 {
		return Sample{Value: 0, Extra: map[string]string{"status": "Unknown", "count": "0"}}, nil
	}

	phase := string(pods[0].Status.Phase)
	if phase == "" {
		phase = "Unknown"
	}

	return Sample{
		Value: phaseIndex(phase),
		Extra: map[string]string{"status": phase, "count": strconv.Itoa(len(pods))},
	}, nil
}

func phaseIndex(phase string) float64 {
	switch corev1.PodPhase(phase) {
	case corev1.PodRunning, corev1.PodSucceeded:
		return statusRunning
	case corev1.PodPending:
		return statusPending
	default:
		return statusFailed
	}
}

// DeploymentReplicas averages spec.replicas across deployments. A nil
// replica count contributes 0.
func (s *Source) DeploymentReplicas(ctx context.Context) (Sample, error) {
	list, err := s.kube.AppsV1().Deployments(s.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrCluster, "Couldn't list deployments", "")
	}

	if len(list.Items) == 0 {
		return Sample{Value: 1, Extra: map[string]string{"replicas": "1", "deployments": "0"}}, nil
	}

	var total int32
	for _, d := range list.Items {
		if d.Spec.Replicas != nil {
			total += *d.Spec.Replicas
		}
	}
	avg := float64(total) / float64(len(list.Items))

	return Sample{
		Value: avg,
		Extra: map[string]string{
			"replicas":    strconv.FormatFloat(avg, 'f', -1, 64),
			"deployments": strconv.Itoa(len(list.Items)),
		},
	}, nil
}

// NodePressure is 1 when any node reports a pressure condition, else 0.
func (s *Source) NodePressure(ctx context.Context) (Sample, error) {
	list, err := s.kube.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return Sample{}, errors.WrapWithCode(err, errors.ErrCluster, "Couldn't list nodes",
			"Node pressure needs cluster-scoped list permission on nodes")
	}

	if len(list.Items) == 0 {
		return Sample{Value: 0, Extra: map[string]string{"pressure": "False", "nodes": "0"}}, nil
	}

	pressure := false
	for _, node := range list.Items {
		if hasPressure(node) {
			pressure = true
			break
		}
	}

	value := 0.0
	if pressure {
		value = 1
	}
	return Sample{
		Value: value,
		Extra: map[string]string{
			"pressure": strconv.FormatBool(pressure),
			"nodes":    strconv.Itoa(len(list.Items)),
		},
	}, nil
}

func hasPressure(node corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Status != corev1.ConditionTrue {
			continue
		}
		for _, t := range pressureConditions {
			if cond.Type == t {
				return true
			}
		}
	}
	return false
}

// Usage holds CPU and memory utilization percentages.
type Usage struct {
	CPU    float64
	Memory float64
	Source string
}

// ResourceUsage returns CPU and memory utilization for the namespace using
// the configured usage source.
func (s *Source) ResourceUsage(ctx context.Context) (Usage, error) {
	pods, err := s.listPods(ctx)
	if err != nil {
		return Usage{}, err
	}

	estimate := estimateFromRequests(pods)
	if s.usageSource != config.UsageSourceMetricsServer {
		return estimate, nil
	}

	if s.metrics == nil {
		s.log.Debug("No metrics.k8s.io client, using request estimate")
		return estimate, nil
	}

	live, err := s.liveUsage(ctx, pods)
	if err != nil {
		s.log.Warn("Metrics API unavailable, using request estimate: %s", errors.Summary(err))
		return estimate, nil
	}

	// Either ratio falls back independently when nothing is requested.
	if live.CPU < 0 {
		live.CPU = estimate.CPU
	}
	if live.Memory < 0 {
		live.Memory = estimate.Memory
	}
	return live, nil
}

// estimateFromRequests averages container requests: CPU cores ×20 and
// memory MiB ÷10, both capped at 100.
func estimateFromRequests(pods []corev1.Pod) Usage {
	if len(pods) == 0 {
		return Usage{Source: config.UsageSourceRequests}
	}

	var cpuCores, memMiB float64
	containers := 0
	for _, pod := range pods {
		for _, c := range pod.Spec.Containers {
			if len(c.Resources.Requests) == 0 {
				continue
			}
			if q, ok := c.Resources.Requests[corev1.ResourceCPU]; ok {
				cpuCores += q.AsApproximateFloat64()
			}
			if q, ok := c.Resources.Requests[corev1.ResourceMemory]; ok {
				memMiB += q.AsApproximateFloat64() / mebibyte
			}
			containers++
		}
	}

	if containers == 0 {
		return Usage{CPU: defaultCPUPercent, Memory: defaultMemoryPercent, Source: config.UsageSourceRequests}
	}

	n := float64(containers)
	return Usage{
		CPU:    min(cpuCores/n*20, 100),
		Memory: min(memMiB/n/10, 100),
		Source: config.UsageSourceRequests,
	}
}

// liveUsage divides metrics-server usage by requests. A ratio is -1 when
// its request total is zero.
func (s *Source) liveUsage(ctx context.Context, pods []corev1.Pod) (Usage, error) {
	list, err := s.metrics.MetricsV1beta1().PodMetricses(s.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return Usage{}, errors.WrapWithCode(err, errors.ErrCluster, "Couldn't list pod metrics",
			"Install metrics-server or set monitoring.usage_source: requests")
	}

	var usedCPU, usedMem resource.Quantity
	for _, pm := range list.Items {
		for _, c := range pm.Containers {
			if q, ok := c.Usage[corev1.ResourceCPU]; ok {
				usedCPU.Add(q)
			}
			if q, ok := c.Usage[corev1.ResourceMemory]; ok {
				usedMem.Add(q)
			}
		}
	}

	var reqCPU, reqMem resource.Quantity
	for _, pod := range pods {
		for _, c := range pod.Spec.Containers {
			if q, ok := c.Resources.Requests[corev1.ResourceCPU]; ok {
				reqCPU.Add(q)
			}
			if q, ok := c.Resources.Requests[corev1.ResourceMemory]; ok {
				reqMem.Add(q)
			}
		}
	}

	return Usage{
		CPU:    ratio(usedCPU, reqCPU),
		Memory: ratio(usedMem, reqMem),
		Source: config.UsageSourceMetricsServer,
	}, nil
}

func ratio(used, requested resource.Quantity) float64 {
	if requested.IsZero() {
		return -1
	}
	return min(used.AsApproximateFloat64()/requested.AsApproximateFloat64()*100, 100)
}

// Fetch returns the raw value for metric. The boolean is false when the
// source has no data for that name.
func (s *Source) Fetch(ctx context.Context, metric string) (Sample, bool, error) {
	switch metric {
	case sonify.MetricCPUUsage, sonify.MetricMemoryUsage:
		usage, err := s.ResourceUsage(ctx)
		if err != nil {
			return Sample{}, false, err
		}
		if metric == sonify.MetricCPUUsage {
			return Sample{Value: usage.CPU, Extra: map[string]string{"type": "cpu", "source": usage.Source}}, true, nil
		}
		return Sample{Value: usage.Memory, Extra: map[string]string{"type": "memory", "source": usage.Source}}, true, nil

	case sonify.MetricPodStatus:
		sample, err := s.PodsStatus(ctx)
		return sample, err == nil, err

	case sonify.MetricHTTPLatency:
		status, err := s.PodsStatus(ctx)
		if err != nil {
			return Sample{}, false, err
		}
		latency := 50 + (statusRunning-status.Value)*100
		return Sample{Value: latency, Extra: map[string]string{"estimated": "true"}}, true, nil

	case sonify.MetricErrorsPerSecond:
		status, err := s.PodsStatus(ctx)
		if err != nil {
			return Sample{}, false, err
		}
		errorsPerSecond := 5.0
		if phase := status.Extra["status"]; phase == string(corev1.PodRunning) || phase == string(corev1.PodSucceeded) {
			errorsPerSecond = 0
		}
		return Sample{Value: errorsPerSecond, Extra: map[string]string{"estimated": "true"}}, true, nil

	case sonify.MetricReplicas:
		sample, err := s.DeploymentReplicas(ctx)
		return sample, err == nil, err

	case sonify.MetricNodePressure:
		sample, err := s.NodePressure(ctx)
		return sample, err == nil, err

	default:
		s.log.Warn("Unknown metric: %s", metric)
		return Sample{}, false, nil
	}
}

func (s *Source) listPods(ctx context.Context) ([]corev1.Pod, error) {
	list, err := s.kube.CoreV1().Pods(s.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCluster, "Couldn't list pods", "")
	}
	return list.Items, nil
}
