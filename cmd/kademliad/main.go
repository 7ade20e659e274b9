// Command kademliad runs a single Kademlia DHT node: it listens for
// framed messages on a TCP address, dispatches them through the message
// and add-node executors, and serves STORE/FIND_VALUE/FIND_NODE/PING
// requests out of an in-memory store and routing table.
//
// Usage:
//
//	kademliad [flags]
//
// Flags:
//
//	--address            listen address, host:port (default: 0.0.0.0:7946)
//	--bucket-capacity    k-bucket capacity (default: 10)
//	--expire-after       pending response expiry (default: 120s)
//	--sweep-every        expiry sweep interval (default: 100ms)
//	--queue-capacity     per-executor worker queue capacity (default: 100)
//	--alpha-reply        neighbors returned per FIND_NODE/FIND_VALUE miss (default: 5)
//	--store-capacity     in-memory store LRU capacity (default: 10000)
//	--dial-timeout       outbound dial timeout (default: 5s)
//	--metrics-address    Prometheus /metrics listen address, empty disables it (default: 0.0.0.0:9946)
//	--version            print version and exit
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/kademlia"
	"github.com/SarthakMakhija/kademlia/network"
	"github.com/SarthakMakhija/kademlia/store"
	"github.com/SarthakMakhija/kademlia/transport"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// cliConfig bundles the kademlia.Config with the entry-point-only options
// (listen address, store capacity) that the core has no opinion about.
type cliConfig struct {
	kademlia.Config
	Address        string
	StoreCapacity  uint
	DialTimeout    time.Duration
	MetricsAddress string
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		Config:         kademlia.DefaultConfig(),
		Address:        "0.0.0.0:7946",
		StoreCapacity:  store.DefaultMemoryStoreCapacity,
		DialTimeout:    5 * time.Second,
		MetricsAddress: "0.0.0.0:9946",
	}
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	log.Printf("kademliad %s starting", version)
	log.Printf("  address:          %s", cfg.Address)
	log.Printf("  bucket capacity:  %d", cfg.BucketCapacity)
	log.Printf("  expire after:     %s", cfg.ExpirePendingResponsesAfter)
	log.Printf("  sweep every:      %s", cfg.RunExpiredPendingResponsesCheckerEvery)
	log.Printf("  queue capacity:   %d", cfg.ExecutorQueueCapacity)
	log.Printf("  alpha reply:      %d", cfg.ClosestNeighborsReplySize)
	log.Printf("  store capacity:   %d", cfg.StoreCapacity)
	log.Printf("  metrics address:  %s", cfg.MetricsAddress)

	if err := cfg.Config.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 1
	}

	host, port, err := splitHostPort(cfg.Address)
	if err != nil {
		log.Printf("Invalid address %q: %v", cfg.Address, err)
		return 1
	}
	self := id.NewNode(id.NewEndpoint(host, port))

	contentStore := store.NewMemoryStore(int(cfg.StoreCapacity))
	dialer := network.TCPDialer{Timeout: cfg.DialTimeout}

	n, err := kademlia.NewNode(self, cfg.Config, contentStore, dialer)
	if err != nil {
		log.Printf("Failed to create node: %v", err)
		return 1
	}

	listener, err := transport.Listen(cfg.Address)
	if err != nil {
		log.Printf("Failed to listen on %s: %v", cfg.Address, err)
		return 1
	}

	log.Printf("node %s listening on %s", self.Id, cfg.Address)

	var metricsServer *http.Server
	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", n.PrometheusHandler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddress, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
		log.Printf("serving metrics on %s/metrics", cfg.MetricsAddress)
	}

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- listener.Serve(n.HandleConnection)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %v, shutting down...", sig)
	case err := <-serveErrCh:
		log.Printf("listener stopped: %v", err)
	}

	listener.Close() //nolint:errcheck // best effort on shutdown.
	n.Shutdown()
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsServer.Shutdown(ctx) //nolint:errcheck // best effort on shutdown.
	}

	log.Println("shutdown complete")
	return 0
}

// parseFlags parses CLI arguments into a cliConfig. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (cliConfig, bool, int) {
	cfg := defaultCLIConfig()
	fs := newFlagSet(&cfg)

	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("kademliad %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	return cfg, false, 0
}

// newFlagSet creates a flag.FlagSet that binds all CLI flags to the given
// cliConfig. The FlagSet uses ContinueOnError so callers control the error
// handling behavior.
func newFlagSet(cfg *cliConfig) *flagSet {
	fs := newCustomFlagSet("kademliad")
	fs.StringVar(&cfg.Address, "address", cfg.Address, "listen address, host:port")
	fs.StringVar(&cfg.MetricsAddress, "metrics-address", cfg.MetricsAddress, "Prometheus /metrics listen address, empty disables it")

	var bucketCapacity, queueCapacity, alphaReply, storeCapacity uint64
	bucketCapacity = uint64(cfg.BucketCapacity)
	queueCapacity = uint64(cfg.ExecutorQueueCapacity)
	alphaReply = uint64(cfg.ClosestNeighborsReplySize)
	storeCapacity = uint64(cfg.StoreCapacity)

	fs.Uint64Var(&bucketCapacity, "bucket-capacity", bucketCapacity, "k-bucket capacity")
	fs.DurationVar(&cfg.ExpirePendingResponsesAfter, "expire-after", cfg.ExpirePendingResponsesAfter, "pending response expiry")
	fs.DurationVar(&cfg.RunExpiredPendingResponsesCheckerEvery, "sweep-every", cfg.RunExpiredPendingResponsesCheckerEvery, "expiry sweep interval")
	fs.Uint64Var(&queueCapacity, "queue-capacity", queueCapacity, "per-executor worker queue capacity")
	fs.Uint64Var(&alphaReply, "alpha-reply", alphaReply, "neighbors returned per FIND_NODE/FIND_VALUE miss")
	fs.Uint64Var(&storeCapacity, "store-capacity", storeCapacity, "in-memory store LRU capacity")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "outbound dial timeout")

	fs.postParse = func() {
		cfg.BucketCapacity = uint(bucketCapacity)
		cfg.ExecutorQueueCapacity = uint(queueCapacity)
		cfg.ClosestNeighborsReplySize = uint(alphaReply)
		cfg.StoreCapacity = uint(storeCapacity)
	}
	return fs
}

// splitHostPort parses a "host:port" address into a host and a uint16
// port, as required by id.NewEndpoint.
func splitHostPort(address string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, uint16(port), nil
}
