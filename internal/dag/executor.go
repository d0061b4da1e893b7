package dag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"crateweld/internal/ctxlog"
	"crateweld/internal/registry"
	"crateweld/internal/step"
)

// Executor runs the nodes of a planned graph concurrently.
type Executor struct {
	Graph      *Graph
	wg         sync.WaitGroup
	registry   *registry.Registry
	numWorkers int
}

// NewExecutor creates a graph executor backed by the given handler
// registry.
func NewExecutor(graph *Graph, numWorkers int, reg *registry.Registry) *Executor {
	if numWorkers <= 0 {
		numWorkers = 4 // Default to 4 if an invalid number is provided.
	}
	return &Executor{
		Graph:      graph,
		numWorkers: numWorkers,
		registry:   reg,
	}
}

// Run executes the entire graph concurrently and returns an error if any
// node fails. It respects the cancellation signal from the provided
// context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *Node, len(e.Graph.Nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root nodes...")
	rootNodeCount := 0
	for _, node := range e.Graph.Nodes {
		if node.depCount.Load() == 0 {
			logger.Debug("Found root node.", "nodeID", node.ID)
			readyChan <- node
			rootNodeCount++
		}
	}
	logger.Debug("Root node scan complete.", "count", rootNodeCount)

	e.wg.Add(len(e.Graph.Nodes))

	logger.Debug("Starting worker pool.", "numWorkers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	logger.Info("Waiting for all nodes to complete...")
	e.wg.Wait()
	logger.Info("All nodes completed.")
	close(readyChan)

	var failedNodes []string
	var rootCauseError error
	for _, id := range e.Graph.SortedIDs() {
		node := e.Graph.Nodes[id]
		if node.State() != Failed {
			continue
		}
		logger.Error("Node failed execution.", "nodeID", node.ID, "error", node.err)
		// Skipped and canceled nodes are symptoms, not causes.
		if node.err != nil && !strings.HasPrefix(node.err.Error(), "skipped") && !errors.Is(node.err, context.Canceled) {
			failedNodes = append(failedNodes, node.ID)
			if rootCauseError == nil {
				rootCauseError = node.err
			}
		}
	}

	if rootCauseError != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}
	// A cancellation from outside is still a failure, even though no
	// single node owns it.
	return ctx.Err()
}

// worker consumes ready nodes until the channel closes. On failure it
// cancels the run and marks every transitive dependent as skipped so the
// wait group still drains.
func (e *Executor) worker(ctx context.Context, readyChan chan *Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for node := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", node.ID)

		if ctx.Err() != nil {
			node.skipOnce.Do(func() {
				workerLogger.Warn("Context canceled, skipping node execution.")
				node.state.Store(int32(Failed))
				node.err = ctx.Err()
				e.wg.Done()
			})
			e.skipDependents(ctx, node)
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		node.state.Store(int32(Running))

		if err := e.executeNode(ctx, node); err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			node.state.Store(int32(Failed))
			node.err = err
			cancel()
			e.skipDependents(ctx, node)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		node.state.Store(int32(Done))

		for _, dependent := range node.Dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// executeNode dispatches one node to its registered handler. Aggregate
// nodes are pure gates and never dispatch.
func (e *Executor) executeNode(ctx context.Context, node *Node) error {
	logger := ctxlog.FromContext(ctx).With("nodeID", node.ID)

	if node.Kind == step.KindAggregate {
		logger.Debug("Aggregate gate passed.")
		return nil
	}

	handler := e.registry.HandlerFor(node.Kind)
	if handler == nil {
		return fmt.Errorf("no handler registered for node kind '%s'", node.Kind)
	}
	return handler.Execute(ctx, node.Step)
}

// skipDependents walks the dependent subtree of a failed node and marks
// every node in it as skipped, exactly once.
func (e *Executor) skipDependents(ctx context.Context, node *Node) {
	logger := ctxlog.FromContext(ctx)

	for _, dependent := range node.Dependents {
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping node due to upstream failure.", "nodeID", dependent.ID, "failedDependency", node.ID)
			dependent.state.Store(int32(Failed))
			dependent.err = fmt.Errorf("skipped due to upstream failure of '%s'", node.ID)
			e.wg.Done()
		})
		e.skipDependents(ctx, dependent)
	}
}
