// Package cluster reads the scalar metrics sonify-k8s plays from a
// Kubernetes API server.
package cluster

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sonify-k8s/sonify-k8s/internal/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

// ClientOptions selects how the API server connection is bootstrapped.
type ClientOptions struct {
	// UseKubeconfig loads a kubeconfig file. When false the in-cluster
	// service account is used.
	UseKubeconfig bool

	// Kubeconfig is an explicit path. Empty means KUBECONFIG, then
	// ~/.kube/config when it exists.
	Kubeconfig string

	// APIURL overrides the server address from either source.
	APIURL string

	// Timeout bounds every request made by the clients. Zero means none.
	Timeout time.Duration
}

// Clients bundles the core clientset with the optional metrics.k8s.io client.
type Clients struct {
	Kube    kubernetes.Interface
	Metrics metricsclient.Interface
	Config  *rest.Config
}

// ResolveKubeconfig returns the kubeconfig path that will be loaded, or ""
// when none is found.
func ResolveKubeconfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	path := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// BuildRestConfig creates the REST configuration for opts.
func BuildRestConfig(opts ClientOptions) (*rest.Config, error) {
	var (
		cfg *rest.Config
		err error
	)

	if opts.UseKubeconfig {
		kubeconfig := ResolveKubeconfig(opts.Kubeconfig)
		cfg, err = clientcmd.BuildConfigFromFlags(opts.APIURL, kubeconfig)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrCluster,
				"Couldn't load kubeconfig",
				"Check ~/.kube/config or point kubernetes.kubeconfig at a valid file")
		}
	} else {
		cfg, err = rest.InClusterConfig()
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrCluster,
				"Couldn't load in-cluster configuration",
				"Run inside a pod with a service account, or set use_kubeconfig: true")
		}
		if opts.APIURL != "" {
			cfg.Host = opts.APIURL
		}
	}

	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	cfg.UserAgent = "sonify-k8s"

	return cfg, nil
}

// NewClients builds the core and metrics clientsets for opts.
func NewClients(opts ClientOptions) (*Clients, error) {
	cfg, err := BuildRestConfig(opts)
	if err != nil {
		return nil, err
	}

	kube, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCluster,
			"Couldn't create Kubernetes client", "")
	}

	metrics, err := metricsclient.NewForConfig(cfg)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCluster,
			"Couldn't create metrics.k8s.io client", "")
	}

	return &Clients{Kube: kube, Metrics: metrics, Config: cfg}, nil
}
