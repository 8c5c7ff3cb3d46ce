package object

import "fmt"

// Kind is the runtime type tag carried by every handle.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindArray
	KindDict
	KindRegex
	KindFuncRef
	KindInstance
	KindTask
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindArray:
		return "Array"
	case KindDict:
		return "Dict"
	case KindRegex:
		return "Regex"
	case KindFuncRef:
		return "Func"
	case KindInstance:
		return "Instance"
	case KindTask:
		return "Task"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ClassType identifies the class of an instance handle.
type ClassType uint64

type TaskState int

const (
	TaskPending TaskState = iota
	TaskResolved
	TaskRejected
)

type Property struct {
	Name  string
	Value *Object
}

// Object is a reference-counted handle. The creator of a handle owns one
// reference; every Retain must be paired with exactly one Release.
type Object struct {
	heap  *Heap
	kind  Kind
	class ClassType
	refs  int
	props []Property

	str   string
	float bool
	i     int64
	f     float64
	b     bool
	items []*Object
	keys  []*Object
	fn    any
	task  TaskState
}

func (o *Object) Kind() Kind {
	return o.kind
}

// Is reports whether o is non-nil and of kind k.
func (o *Object) Is(k Kind) bool {
	return o != nil && o.kind == k
}

func (o *Object) Refs() int {
	if o == nil {
		return 0
	}
	return o.refs
}

// Retain increments the reference count. Retaining nil is a no-op.
func (o *Object) Retain() *Object {
	if o != nil {
		o.refs++
	}
	return o
}

// Release decrements the reference count and frees the handle's children once
// it reaches zero. Releasing nil is a no-op; releasing a dead handle is
// recorded on the heap instead of corrupting counts.
func (o *Object) Release() {
	if o == nil {
		return
	}
	if o.refs <= 0 {
		o.heap.overReleased++
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	o.heap.live--
	props, items, keys := o.props, o.items, o.keys
	o.props, o.items, o.keys, o.fn = nil, nil, nil, nil
	for _, p := range props {
		p.Value.Release()
	}
	for _, v := range items {
		v.Release()
	}
	for _, k := range keys {
		k.Release()
	}
}

// Str returns the text of a String handle.
func (o *Object) Str() string {
	return o.str
}

func (o *Object) Bool() bool {
	return o.b
}

func (o *Object) IsFloat() bool {
	return o.float
}

// Int returns the integer value of a Number, truncating floats.
func (o *Object) Int() int64 {
	if o.float {
		return int64(o.f)
	}
	return o.i
}

// Float returns the value of a Number promoted to float64.
func (o *Object) Float() float64 {
	if o.float {
		return o.f
	}
	return float64(o.i)
}

// Class returns the class type of an instance handle.
func (o *Object) Class() ClassType {
	return o.class
}

// Target returns the payload of a function reference.
func (o *Object) Target() any {
	return o.fn
}

func (o *Object) TaskState() TaskState {
	return o.task
}

func (o *Object) Pattern() string {
	if p := o.Property("pattern"); p != nil {
		return p.str
	}
	return ""
}

func (o *Object) Flags() string {
	if p := o.Property("flags"); p != nil {
		return p.str
	}
	return ""
}

// Property returns a borrowed reference to the named property, or nil.
func (o *Object) Property(name string) *Object {
	for _, p := range o.props {
		if p.Name == name {
			return p.Value
		}
	}
	return nil
}

func (o *Object) HasProperty(name string) bool {
	for _, p := range o.props {
		if p.Name == name {
			return true
		}
	}
	return false
}

// SetProperty stores v under name, retaining v and releasing any previous
// value. The property is appended when it does not exist yet.
func (o *Object) SetProperty(name string, v *Object) {
	v.Retain()
	for i := range o.props {
		if o.props[i].Name == name {
			old := o.props[i].Value
			o.props[i].Value = v
			old.Release()
			return
		}
	}
	o.props = append(o.props, Property{Name: name, Value: v})
}

func (o *Object) PropertyCount() int {
	return len(o.props)
}

func (o *Object) PropertyAt(i int) Property {
	return o.props[i]
}

// Len returns the element count of an Array or Dict.
func (o *Object) Len() int {
	return len(o.items)
}

// Index returns a borrowed reference to an array element, or nil when out of
// range.
func (o *Object) Index(i int) *Object {
	if i < 0 || i >= len(o.items) {
		return nil
	}
	return o.items[i]
}

// Push appends v to an array, retaining it.
func (o *Object) Push(v *Object) {
	o.items = append(o.items, v.Retain())
}

// SetIndex replaces an array element. It reports false when i is out of range.
func (o *Object) SetIndex(i int, v *Object) bool {
	if i < 0 || i >= len(o.items) {
		return false
	}
	old := o.items[i]
	o.items[i] = v.Retain()
	old.Release()
	return true
}

func (o *Object) findKey(key *Object) int {
	for i, k := range o.keys {
		if keyEqual(k, key) {
			return i
		}
	}
	return -1
}

func keyEqual(a, b *Object) bool {
	switch {
	case a.kind == KindString && b.kind == KindString:
		return a.str == b.str
	case a.kind == KindNumber && b.kind == KindNumber:
		return CompareNumbers(a, b) == 0
	}
	return a == b
}

// Get returns a borrowed reference to the value stored under key in a Dict.
func (o *Object) Get(key *Object) *Object {
	if i := o.findKey(key); i >= 0 {
		return o.items[i]
	}
	return nil
}

// Set stores value under key in a Dict, retaining both.
func (o *Object) Set(key, value *Object) {
	if i := o.findKey(key); i >= 0 {
		old := o.items[i]
		o.items[i] = value.Retain()
		old.Release()
		return
	}
	o.keys = append(o.keys, key.Retain())
	o.items = append(o.items, value.Retain())
}

func (o *Object) KeyAt(i int) *Object {
	return o.keys[i]
}

func (o *Object) ValueAt(i int) *Object {
	return o.items[i]
}

// CompareNumbers returns -1, 0 or 1 comparing two Number handles.
func CompareNumbers(a, b *Object) int {
	if !a.float && !b.float {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	af, bf := a.Float(), b.Float()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}
