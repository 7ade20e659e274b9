package kademlia

import (
	"context"
	"net/http"
	"time"

	"github.com/SarthakMakhija/kademlia/action"
	"github.com/SarthakMakhija/kademlia/executor"
	"github.com/SarthakMakhija/kademlia/id"
	"github.com/SarthakMakhija/kademlia/log"
	"github.com/SarthakMakhija/kademlia/message"
	"github.com/SarthakMakhija/kademlia/metrics"
	"github.com/SarthakMakhija/kademlia/network"
	"github.com/SarthakMakhija/kademlia/routing"
	"github.com/SarthakMakhija/kademlia/store"
	"github.com/SarthakMakhija/kademlia/wait"
)

// selfMonitorInterval is how often Node samples its own CPU usage and
// publishes it, alongside the network send rate, to the metrics reporter.
const selfMonitorInterval = 5 * time.Second

// logReportBackend adapts a log.Logger into a metrics.ReportBackend so
// periodic self-monitoring snapshots land in the structured log stream
// rather than requiring a push-gateway.
type logReportBackend struct {
	logger *log.Logger
}

func (b logReportBackend) Report(snapshot map[string]float64) error {
	b.logger.Debug("self-monitor snapshot", "metrics", snapshot)
	return nil
}

// Node wires every core component together for a single local Kademlia
// participant: routing table, waiting list, network send path, the two
// message executors, and their handlers.
type Node struct {
	self id.Node

	routing     *routing.Table
	waitingList *wait.WaitingList
	network     *network.Network

	messageExecutor *executor.MessageExecutor
	addNodeExecutor *executor.AddNodeExecutor

	cpu      *metrics.CPUTracker
	reporter *metrics.MetricsReporter

	monitorStop chan struct{}
	monitorDone chan struct{}

	logger *log.Logger
}

// NewNode assembles a Node for self, persisting values into s and dialing
// peers via dialer.
func NewNode(self id.Node, cfg Config, s store.Store, dialer network.Dialer) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	table := routing.NewTable(self.Id, int(cfg.BucketCapacity))
	waitingList := wait.NewWaitingList(wait.Options{
		ExpireAfter: cfg.ExpirePendingResponsesAfter,
		SweepEvery:  cfg.RunExpiredPendingResponsesCheckerEvery,
	}, wait.SystemClock{})
	net := network.NewNetwork(dialer, waitingList)

	alphaReply := int(cfg.ClosestNeighborsReplySize)
	handlers := action.NewHandlers(
		action.NewStore(s),
		action.NewSendPingReply(net, self),
		action.NewFindValue(s, table, net, self, alphaReply),
		action.NewFindNode(table, net, self, alphaReply),
	)
	addNodeHandler := action.NewAddNode(table, net, self)
	logger := log.Default().Module("kademlia")

	reporter := metrics.NewMetricsReporter(selfMonitorInterval)
	reporter.RegisterBackend("log", logReportBackend{logger: logger})
	reporter.Start()

	queueCapacity := int(cfg.ExecutorQueueCapacity)
	n := &Node{
		self:            self,
		routing:         table,
		waitingList:     waitingList,
		network:         net,
		messageExecutor: executor.NewMessageExecutor(queueCapacity, handlers, waitingList),
		addNodeExecutor: executor.NewAddNodeExecutor(queueCapacity, addNodeHandler),
		cpu:             metrics.NewCPUTracker(),
		reporter:        reporter,
		monitorStop:     make(chan struct{}),
		monitorDone:     make(chan struct{}),
		logger:          logger,
	}
	go n.selfMonitor()
	return n, nil
}

// selfMonitor periodically samples CPU usage and the network send rate,
// feeding both into the metrics reporter until Shutdown stops it.
func (n *Node) selfMonitor() {
	defer close(n.monitorDone)

	ticker := time.NewTicker(selfMonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-n.monitorStop:
			return
		case <-ticker.C:
			n.cpu.RecordCPU()
			n.reporter.RecordMetric("process.cpu_percent", n.cpu.Usage())
			n.reporter.RecordMetric("network.send_rate1", n.network.SendRate1())
		}
	}
}

// Self returns the node's own id and endpoint.
func (n *Node) Self() id.Node { return n.self }

// Routing exposes the routing table, chiefly for tests and diagnostics.
func (n *Node) Routing() *routing.Table { return n.routing }

// Network exposes the send path so callers can issue lookups.
func (n *Node) Network() *network.Network { return n.network }

// PrometheusHandler returns an http.Handler serving every metric this
// process has registered (routing, waiting list, executors, network,
// store) in Prometheus text exposition format.
func (n *Node) PrometheusHandler() http.Handler {
	exporter := metrics.NewPrometheusExporter(metrics.DefaultRegistry, metrics.PrometheusConfig{
		Namespace:     "kademlia",
		EnableRuntime: true,
	})
	return exporter.Handler()
}

// HandleConnection reads one framed message from conn, submits it to the
// message executor, and, if it carries a source node, also submits an
// AddNode to the add-node executor. Matches §4.8's connection-handler
// contract: failures are logged, never propagated to the transport.
func (n *Node) HandleConnection(conn message.FrameReadWriter) {
	m, err := conn.ReadFrame()
	if err != nil {
		n.logger.Debug("failed to read frame", "error", err)
		return
	}

	if _, err := n.messageExecutor.Submit(m); err != nil {
		n.logger.Error("failed to submit message to the message executor", "error", err)
	}

	if source, ok := message.HasSource(m); ok {
		if _, err := n.addNodeExecutor.Submit(&message.AddNode{Source: source}); err != nil {
			n.logger.Error("failed to submit add_node", "error", err)
		}
	}
}

// Shutdown stops both executors, waiting until each has processed its
// ShutDown message so that later submissions are rejected, then stops the
// waiting list's sweeper and the self-monitoring goroutine.
func (n *Node) Shutdown() {
	messageDone, messageErr := n.messageExecutor.Shutdown()
	addNodeDone, addNodeErr := n.addNodeExecutor.Shutdown()
	if messageErr == nil {
		messageDone.Await(context.Background())
	}
	if addNodeErr == nil {
		addNodeDone.Await(context.Background())
	}
	n.waitingList.Stop()

	close(n.monitorStop)
	<-n.monitorDone
	n.reporter.Stop()
}
