package object

// Heap allocates handles and keeps the counters needed to check reference
// discipline: the number of live handles and the number of releases that hit
// an already dead handle.
type Heap struct {
	live         int
	allocated    int
	overReleased int
}

func NewHeap() *Heap {
	return &Heap{}
}

// Live returns the number of handles whose reference count is above zero.
func (h *Heap) Live() int {
	return h.live
}

func (h *Heap) Allocated() int {
	return h.allocated
}

// OverReleased returns how many releases targeted a handle that was already
// freed.
func (h *Heap) OverReleased() int {
	return h.overReleased
}

func (h *Heap) alloc(kind Kind) *Object {
	h.live++
	h.allocated++
	return &Object{heap: h, kind: kind, refs: 1}
}

func (h *Heap) NewString(s string) *Object {
	o := h.alloc(KindString)
	o.str = s
	return o
}

func (h *Heap) NewInt(i int64) *Object {
	o := h.alloc(KindNumber)
	o.i = i
	return o
}

func (h *Heap) NewFloat(f float64) *Object {
	o := h.alloc(KindNumber)
	o.float = true
	o.f = f
	return o
}

func (h *Heap) NewBool(b bool) *Object {
	o := h.alloc(KindBool)
	o.b = b
	return o
}

func (h *Heap) NewArray() *Object {
	return h.alloc(KindArray)
}

func (h *Heap) NewDict() *Object {
	return h.alloc(KindDict)
}

// NewRegex stores only the source text of a pattern; compiling it is the
// caller's job.
func (h *Heap) NewRegex(pattern, flags string) *Object {
	o := h.alloc(KindRegex)
	p, f := h.NewString(pattern), h.NewString(flags)
	o.SetProperty("pattern", p)
	o.SetProperty("flags", f)
	p.Release()
	f.Release()
	return o
}

func (h *Heap) NewFuncRef(target any) *Object {
	o := h.alloc(KindFuncRef)
	o.fn = target
	return o
}

func (h *Heap) NewInstance(class ClassType) *Object {
	o := h.alloc(KindInstance)
	o.class = class
	return o
}

// NewTask returns a pending task. Nothing in the runtime resolves tasks yet.
func (h *Heap) NewTask() *Object {
	o := h.alloc(KindTask)
	o.task = TaskPending
	return o
}
