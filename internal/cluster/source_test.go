package cluster

import (
	"context"
	"fmt"
	"testing"

	"github.com/sonify-k8s/sonify-k8s/internal/config"
	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"github.com/sonify-k8s/sonify-k8s/internal/logger"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	"k8s.io/utils/ptr"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ns = "apps"

func pod(name string, phase corev1.PodPhase, requests ...corev1.ResourceList) *corev1.Pod {
	p := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
		Status:     corev1.PodStatus{Phase: phase},
	}
	for i, req := range requests {
		p.Spec.Containers = append(p.Spec.Containers, corev1.Container{
			Name:      fmt.Sprintf("c%d", i),
			Resources: corev1.ResourceRequirements{Requests: req},
		})
	}
	return p
}

func requests(cpu, mem string) corev1.ResourceList {
	rl := corev1.ResourceList{}
	if cpu != "" {
		rl[corev1.ResourceCPU] = resource.MustParse(cpu)
	}
	if mem != "" {
		rl[corev1.ResourceMemory] = resource.MustParse(mem)
	}
	return rl
}

func deployment(name string, replicas *int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
		Spec:       appsv1.DeploymentSpec{Replicas: replicas},
	}
}

func node(name string, conditions ...corev1.NodeCondition) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status:     corev1.NodeStatus{Conditions: conditions},
	}
}

func newSource(objects ...runtime.Object) *Source {
	return NewSource(fake.NewSimpleClientset(objects...), nil, ns, config.UsageSourceRequests, nil)
}

func TestPodsStatus(t *testing.T) {
	tests := []struct {
		name   string
		pods   []runtime.Object
		value  float64
		status string
		count  string
	}{
		{"no pods", nil, 0, "Unknown", "0"},
		{"running", []runtime.Object{pod("a", corev1.PodRunning)}, 3, "Running", "1"},
		{"succeeded", []runtime.Object{pod("a", corev1.PodSucceeded)}, 3, "Succeeded", "1"},
		{"pending", []runtime.Object{pod("a", corev1.PodPending), pod("b", corev1.PodRunning)}, 1, "Pending", "2"},
		{"failed", []runtime.Object{pod("a", corev1.PodFailed)}, 0, "Failed", "1"},
		{"no phase", []runtime.Object{pod("a", "")}, 0, "Unknown", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSource(tt.pods...)

			sample, err := s.PodsStatus(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.value, sample.Value)
			assert.Equal(t, tt.status, sample.Extra["status"])
			assert.Equal(t, tt.count, sample.Extra["count"])
		})
	}
}

func TestDeploymentReplicas(t *testing.T) {
	tests := []struct {
		name        string
		deployments []runtime.Object
		value       float64
		replicas    string
		count       string
	}{
		{"none", nil, 1, "1", "0"},
		{"single", []runtime.Object{deployment("a", ptr.To[int32](3))}, 3, "3", "1"},
		{"average", []runtime.Object{deployment("a", ptr.To[int32](2)), deployment("b", ptr.To[int32](1))}, 1.5, "1.5", "2"},
		{"nil replicas count as zero", []runtime.Object{deployment("a", nil), deployment("b", ptr.To[int32](4))}, 2, "2", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSource(tt.deployments...)

			sample, err := s.DeploymentReplicas(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.value, sample.Value)
			assert.Equal(t, tt.replicas, sample.Extra["replicas"])
			assert.Equal(t, tt.count, sample.Extra["deployments"])
		})
	}
}

func TestNodePressure(t *testing.T) {
	healthy := corev1.NodeCondition{Type: corev1.NodeReady, Status: corev1.ConditionTrue}
	tests := []struct {
		name     string
		nodes    []runtime.Object
		value    float64
		pressure string
	}{
		{"no nodes", nil, 0, "False"},
		{"healthy", []runtime.Object{node("n1", healthy)}, 0, "false"},
		{"memory pressure", []runtime.Object{node("n1", healthy), node("n2", corev1.NodeCondition{Type: corev1.NodeMemoryPressure, Status: corev1.ConditionTrue})}, 1, "true"},
		{"disk pressure false", []runtime.Object{node("n1", corev1.NodeCondition{Type: corev1.NodeDiskPressure, Status: corev1.ConditionFalse})}, 0, "false"},
		{"pid pressure", []runtime.Object{node("n1", corev1.NodeCondition{Type: corev1.NodePIDPressure, Status: corev1.ConditionTrue})}, 1, "true"},
		{"network unavailable", []runtime.Object{node("n1", corev1.NodeCondition{Type: corev1.NodeNetworkUnavailable, Status: corev1.ConditionTrue})}, 1, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSource(tt.nodes...)

			sample, err := s.NodePressure(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.value, sample.Value)
			assert.Equal(t, tt.pressure, sample.Extra["pressure"])
		})
	}
}

func TestResourceUsage_Requests(t *testing.T) {
	tests := []struct {
		name string
		pods []runtime.Object
		cpu  float64
		mem  float64
	}{
		{"no pods", nil, 0, 0},
		{"pods without requests", []runtime.Object{pod("a", corev1.PodRunning, corev1.ResourceList{})}, 30, 40},
		{"single container", []runtime.Object{pod("a", corev1.PodRunning, requests("500m", "256Mi"))}, 10, 25.6},
		{"averaged over containers", []runtime.Object{
			pod("a", corev1.PodRunning, requests("1", "1Gi")),
			pod("b", corev1.PodRunning, requests("", "")),
			pod("c", corev1.PodRunning, requests("2", "")),
		}, 30, 51.2},
		{"capped at 100", []runtime.Object{pod("a", corev1.PodRunning, requests("8", "4Gi"))}, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSource(tt.pods...)

			usage, err := s.ResourceUsage(context.Background())
			require.NoError(t, err)
			assert.InDelta(t, tt.cpu, usage.CPU, 1e-9)
			assert.InDelta(t, tt.mem, usage.Memory, 1e-9)
			assert.Equal(t, config.UsageSourceRequests, usage.Source)
		})
	}
}

func podMetrics(name, cpu, mem string) metricsv1beta1.PodMetrics {
	return metricsv1beta1.PodMetrics{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
		Containers: []metricsv1beta1.ContainerMetrics{{
			Name:  "c0",
			Usage: requests(cpu, mem),
		}},
	}
}

// metricsClient serves a fixed PodMetricsList. The fake tracker cannot map
// the PodMetrics kind to its "pods" resource, so a reactor answers instead.
func metricsClient(list *metricsv1beta1.PodMetricsList, err error) *metricsfake.Clientset {
	mc := metricsfake.NewSimpleClientset()
	mc.PrependReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
		if err != nil {
			return true, nil, err
		}
		return true, list, nil
	})
	return mc
}

func TestResourceUsage_MetricsServer(t *testing.T) {
	pods := []runtime.Object{
		pod("a", corev1.PodRunning, requests("500m", "200Mi")),
		pod("b", corev1.PodRunning, requests("500m", "200Mi")),
	}

	t.Run("ratio of usage to requests", func(t *testing.T) {
		mc := metricsClient(&metricsv1beta1.PodMetricsList{Items: []metricsv1beta1.PodMetrics{
			podMetrics("a", "250m", "100Mi"),
			podMetrics("b", "250m", "300Mi"),
		}}, nil)
		s := NewSource(fake.NewSimpleClientset(pods...), mc, ns, config.UsageSourceMetricsServer, nil)

		usage, err := s.ResourceUsage(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 50, usage.CPU, 1e-6)
		assert.InDelta(t, 100, usage.Memory, 1e-6)
		assert.Equal(t, config.UsageSourceMetricsServer, usage.Source)
	})

	t.Run("metrics api error falls back", func(t *testing.T) {
		log := logger.NewBufferLogger()
		mc := metricsClient(nil, fmt.Errorf("the server could not find the requested resource"))
		s := NewSource(fake.NewSimpleClientset(pods...), mc, ns, config.UsageSourceMetricsServer, log)

		usage, err := s.ResourceUsage(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 10, usage.CPU, 1e-9)
		assert.Equal(t, config.UsageSourceRequests, usage.Source)
		assert.True(t, log.Contains("warn", "Metrics API unavailable"))
	})

	t.Run("zero requests fall back per resource", func(t *testing.T) {
		noMem := []runtime.Object{pod("a", corev1.PodRunning, requests("1", ""))}
		mc := metricsClient(&metricsv1beta1.PodMetricsList{Items: []metricsv1beta1.PodMetrics{
			podMetrics("a", "500m", "64Mi"),
		}}, nil)
		s := NewSource(fake.NewSimpleClientset(noMem...), mc, ns, config.UsageSourceMetricsServer, nil)

		usage, err := s.ResourceUsage(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 50, usage.CPU, 1e-6)
		assert.InDelta(t, 0, usage.Memory, 1e-9, "request estimate with no memory requests")
	})

	t.Run("nil metrics client uses requests", func(t *testing.T) {
		s := NewSource(fake.NewSimpleClientset(pods...), nil, ns, config.UsageSourceMetricsServer, nil)

		usage, err := s.ResourceUsage(context.Background())
		require.NoError(t, err)
		assert.Equal(t, config.UsageSourceRequests, usage.Source)
	})
}

func TestFetch(t *testing.T) {
	objects := []runtime.Object{
		pod("a", corev1.PodPending, requests("500m", "256Mi")),
		deployment("web", ptr.To[int32](3)),
		node("n1"),
	}

	tests := []struct {
		metric string
		value  float64
		key    string
		extra  string
	}{
		{"cpu_usage", 10, "type", "cpu"},
		{"memory_usage", 25.6, "type", "memory"},
		{"pod_status", 1, "status", "Pending"},
		{"http_latency", 250, "estimated", "true"},
		{"errors_per_second", 5, "estimated", "true"},
		{"replicas", 3, "replicas", "3"},
		{"node_pressure", 0, "nodes", "1"},
	}

	s := newSource(objects...)
	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			sample, ok, err := s.Fetch(context.Background(), tt.metric)
			require.NoError(t, err)
			require.True(t, ok)
			assert.InDelta(t, tt.value, sample.Value, 1e-9)
			assert.Equal(t, tt.extra, sample.Extra[tt.key])
		})
	}
}

func TestFetch_RunningPodHasNoErrors(t *testing.T) {
	s := newSource(pod("a", corev1.PodRunning))

	sample, ok, err := s.Fetch(context.Background(), "errors_per_second")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.0, sample.Value)

	latency, _, err := s.Fetch(context.Background(), "http_latency")
	require.NoError(t, err)
	assert.Equal(t, 50.0, latency.Value)
}

func TestFetch_UnknownMetric(t *testing.T) {
	log := logger.NewBufferLogger()
	s := NewSource(fake.NewSimpleClientset(), nil, ns, "", log)

	_, ok, err := s.Fetch(context.Background(), "disk_io")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, log.Contains("warn", "Unknown metric: disk_io"))
}

func TestFetch_APIError(t *testing.T) {
	kube := fake.NewSimpleClientset()
	kube.PrependReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, fmt.Errorf("connection refused")
	})
	s := NewSource(kube, nil, ns, "", nil)

	_, ok, err := s.Fetch(context.Background(), "pod_status")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.IsCode(err, errors.ErrCluster))

	err = s.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Couldn't connect")
}

func TestConnect(t *testing.T) {
	log := logger.NewBufferLogger()
	s := NewSource(fake.NewSimpleClientset(), nil, ns, "", log)

	require.NoError(t, s.Connect(context.Background()))
	assert.True(t, log.Contains("info", "Successfully connected"))
	assert.Equal(t, ns, s.Namespace())
}
