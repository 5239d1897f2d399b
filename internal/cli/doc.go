// Package cli implements the sonify-k8s command-line interface.
//
// The root command runs the poll loop: every interval each enabled metric is
// fetched from the cluster, mapped to a note and a color, played and printed.
// Subcommands reuse the same pipeline:
//
//	sonify-k8s                   - Poll and play until interrupted
//	sonify-k8s dashboard         - Full-screen view of the same loop
//	sonify-k8s notes             - Print the sound/color table
//	sonify-k8s play <m> <value>  - Map and play a single value
//	sonify-k8s doctor            - Diagnose config, cluster and audio
//	sonify-k8s init              - Create a config file
//	sonify-k8s version           - Print build information
//
// # Configuration Order
//
// Settings are resolved file first, then environment (K8S_NAMESPACE,
// POLL_INTERVAL, USE_KUBE_CONFIG, TEST_MODE), then the persistent flags,
// and validated last. The namespace flag defaults to "default" and is always
// applied.
//
// # Shutdown
//
// Execute cancels the command context on SIGINT or SIGTERM. The poll loop
// and exporters share an errgroup, so the first failure or the signal stops
// all of them before audio is drained and closed.
package cli
