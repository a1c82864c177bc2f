package reactordebug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/flowmesh/reactor"
)

// Extension logs the live dependency graph whenever a cell evaluation
// fails inside a propagation wave, the same trigger the teacher's
// GraphDebugExtension uses for DI resolution failures. Failures of a cell's
// construction-time evaluation or of Reset are not reported to it.
type Extension struct {
	reactor.BaseExtension
	logger *slog.Logger
}

// New constructs a graph-debug extension over the given slog.Handler. Use
// NewHumanHandler for formatted terminal output or NewSilentHandler to
// discard everything (matching the teacher's test-time usage).
func New(handler slog.Handler) *Extension {
	return &Extension{
		BaseExtension: reactor.NewBaseExtension("graph-debug"),
		logger:        slog.New(handler),
	}
}

func (e *Extension) OnError(err error, op *reactor.Operation, scope *reactor.Scope) {
	e.logger.Error("Cell Evaluation Error",
		"node", scope.NodeName(op.NodeID),
		"error", err.Error(),
		"operation", string(op.Kind),
		"dependency_graph", RenderGraph(scope, op.NodeID),
		"detail", FormatDetail(scope, op.NodeID, err),
	)
}

// SilentHandler discards every log record; useful in tests that exercise
// error paths without wanting diagnostic noise.
type SilentHandler struct{}

func NewSilentHandler() *SilentHandler { return &SilentHandler{} }

func (h *SilentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h *SilentHandler) Handle(context.Context, slog.Record) error { return nil }
func (h *SilentHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h *SilentHandler) WithGroup(string) slog.Handler             { return h }

// HumanHandler formats log records for a terminal, special-casing the
// "Cell Evaluation Error" message to print the rendered dependency graph
// with line breaks instead of as a single JSON-escaped attribute value.
type HumanHandler struct {
	w     io.Writer
	level slog.Level
}

func NewHumanHandler(w io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{w: w, level: level}
}

func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *HumanHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Message == "Cell Evaluation Error" {
		return h.handleEvalError(record)
	}
	if _, err := fmt.Fprintf(h.w, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.w, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleEvalError(record slog.Record) error {
	var node, errMsg, op, graph string
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "node":
			node = a.Value.String()
		case "error":
			errMsg = a.Value.String()
		case "operation":
			op = a.Value.String()
		case "dependency_graph":
			graph = a.Value.String()
		}
		return true
	})

	bar := strings.Repeat("=", 70)
	fmt.Fprintf(h.w, "\n%s\n[GraphDebug] Cell Evaluation Error\n%s\n", bar, bar)
	fmt.Fprintf(h.w, "\nFailed Node: %s\nError: %s\nOperation: %s\n", node, errMsg, op)
	fmt.Fprintf(h.w, "\nDependency Graph:\n%s\n%s\n\n", graph, bar)
	return nil
}

func (h *HumanHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *HumanHandler) WithGroup(string) slog.Handler      { return h }
