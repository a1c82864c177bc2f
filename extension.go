package reactor

// Extension hooks into a scope's evaluation and propagation lifecycle,
// retargeted from the teacher's "resolve/update operations on a DI
// executor" to "evaluate operations on a reactive cell, and the wave they
// participate in". Shape (Wrap/OnError/Order-sorted registration/Dispose)
// is kept from extension.go/scope.go almost verbatim.
type Extension interface {
	// Name identifies the extension in diagnostics.
	Name() string

	// Order determines registration order; lower runs (wraps) first.
	Order() int

	// Init runs once when the extension is registered on a scope.
	Init(scope *Scope) error

	// Wrap intercepts a single node's evaluate operation.
	Wrap(op *Operation, next func() (any, error)) (any, error)

	// OnError runs when an operation fails.
	OnError(err error, op *Operation, scope *Scope)

	// OnWaveStart/OnWaveEnd bracket one propagation wave.
	OnWaveStart(scope *Scope, waveID uint64, origin ID)
	OnWaveEnd(scope *Scope, waveID uint64, touched int, err error)

	// Dispose runs when the scope is disposed.
	Dispose(scope *Scope) error
}

// BaseExtension provides no-op defaults for every Extension method, so a
// concrete extension only needs to implement the hooks it cares about.
type BaseExtension struct {
	name string
}

// NewBaseExtension constructs a BaseExtension with the given diagnostic
// name and Order() 100 (the teacher's default).
func NewBaseExtension(name string) BaseExtension { return BaseExtension{name: name} }

func (e *BaseExtension) Name() string  { return e.name }
func (e *BaseExtension) Order() int    { return 100 }
func (e *BaseExtension) Init(*Scope) error { return nil }

func (e *BaseExtension) Wrap(_ *Operation, next func() (any, error)) (any, error) { return next() }
func (e *BaseExtension) OnError(error, *Operation, *Scope)                        {}
func (e *BaseExtension) OnWaveStart(*Scope, uint64, ID)                          {}
func (e *BaseExtension) OnWaveEnd(*Scope, uint64, int, error)                    {}
func (e *BaseExtension) Dispose(*Scope) error                                    { return nil }

// OperationKind is the kind of operation an Operation describes.
type OperationKind string

const (
	OpEvaluate OperationKind = "evaluate"
	OpWrite    OperationKind = "write"
	OpReset    OperationKind = "reset"
	OpClose    OperationKind = "close"
)

// Operation describes the node and kind of work an Extension is wrapping
// or being notified about.
type Operation struct {
	Kind   OperationKind
	NodeID ID
	Scope  *Scope
}
