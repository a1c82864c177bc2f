package reactordebug_test

import (
	"strings"
	"testing"

	"github.com/flowmesh/reactor"
	"github.com/flowmesh/reactor/reactordebug"
)

func TestRenderGraphIncludesNodeNames(t *testing.T) {
	s := reactor.NewScope()
	a := reactor.NewVar(s, 1)
	a.SetName("price")
	b, err := reactor.NewCalc(s, func(ctx *reactor.Ctx) (int, error) {
		return reactor.Read(ctx, a)
	})
	if err != nil {
		t.Fatalf("NewCalc: %v", err)
	}
	b.SetName("doubled")

	out := reactordebug.RenderGraph(s, b.ID())
	if !strings.Contains(out, "price") {
		t.Fatalf("expected rendered graph to include %q, got:\n%s", "price", out)
	}
	if !strings.Contains(out, "doubled") {
		t.Fatalf("expected rendered graph to include %q, got:\n%s", "doubled", out)
	}
	if !strings.Contains(out, "❌") {
		t.Fatalf("expected the failed node marker in rendered graph, got:\n%s", out)
	}
}

func TestRenderGraphOnEmptyScopeReportsEmpty(t *testing.T) {
	s := reactor.NewScope()
	out := reactordebug.RenderGraph(s, 0)
	if !strings.Contains(out, "empty") {
		t.Fatalf("expected an empty-graph message, got:\n%s", out)
	}
}

func TestFormatDetailIncludesErrorSection(t *testing.T) {
	s := reactor.NewScope()
	a := reactor.NewVar(s, 1)
	b, err := reactor.NewCalc(s, func(ctx *reactor.Ctx) (int, error) {
		return reactor.Read(ctx, a)
	})
	if err != nil {
		t.Fatalf("NewCalc: %v", err)
	}

	detail := reactordebug.FormatDetail(s, b.ID(), errBoom)
	if !strings.Contains(detail, "Error Details") {
		t.Fatalf("expected an Error Details section, got:\n%s", detail)
	}
}

var errBoom = &boomErr{}

type boomErr struct{}

func (*boomErr) Error() string { return "boom" }
