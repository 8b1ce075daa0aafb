package section

// The three auxiliary handlers below are opaque to the general assembler
// (§4.D); each simply appends, in call order, the timeline records keyed
// by section offset that its caller passes in. No package in this module
// currently records into them or serializes them.

// RegVarUsage is one (regvar, register-range, field, access) record
// attached to a section offset, per the Data Model's "Regvar usage
// record."
type RegVarUsage struct {
	Offset    int
	VarName   string
	RStart    int
	REnd      int
	FieldID   int
	Read      bool
	Write     bool
	Align     int
	UseRegMode bool
}

// UsageHandler tracks register reads/writes at each offset of a section.
type UsageHandler struct {
	Records []RegVarUsage
}

func newUsageHandler() *UsageHandler { return &UsageHandler{} }

// Record appends one usage entry.
func (h *UsageHandler) Record(u RegVarUsage) { h.Records = append(h.Records, u) }

// LinearDepSpan is one register-liveness span: the variable is live from
// Start to End (section-relative byte offsets).
type LinearDepSpan struct {
	VarName    string
	Start, End int
}

// LinearDepHandler tracks register liveness spans for a section.
type LinearDepHandler struct {
	Spans []LinearDepSpan
}

func newLinearDepHandler() *LinearDepHandler { return &LinearDepHandler{} }

func (h *LinearDepHandler) Record(s LinearDepSpan) { h.Spans = append(h.Spans, s) }

// DelayedOp models "this result becomes visible after N units of wait
// queue Q" per the Data Model's "Delayed-op record."
type DelayedOp struct {
	Offset int
	Queue  int // index into the target's named wait queues (<=4)
	Kind   int // delay-op type (<=8 per target)
	Delay  int
}

// WaitInstr models "stall until queue Q drains to <=K" per the Data
// Model's "wait-instruction record."
type WaitInstr struct {
	Offset int
	Queue  int
	MaxLeft int
}

// WaitStateHandler tracks the post-issue latency annotations (waitcnt-style
// hazards) for a section.
type WaitStateHandler struct {
	Delayed []DelayedOp
	Waits   []WaitInstr
}

func newWaitStateHandler() *WaitStateHandler { return &WaitStateHandler{} }

func (h *WaitStateHandler) RecordDelay(d DelayedOp)  { h.Delayed = append(h.Delayed, d) }
func (h *WaitStateHandler) RecordWait(w WaitInstr)   { h.Waits = append(h.Waits, w) }
