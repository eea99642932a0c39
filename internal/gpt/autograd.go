package gpt

import "math"

// Value is a scalar node in the computation graph. Data holds the forward
// result, Grad accumulates d(loss)/d(value) during Backward.
type Value struct {
	Data     float64
	Grad     float64
	children []*Value
	local    []float64
}

// NewValue returns a leaf node.
func NewValue(data float64) *Value {
	return &Value{Data: data}
}

func (v *Value) Add(o *Value) *Value {
	return &Value{Data: v.Data + o.Data, children: []*Value{v, o}, local: []float64{1, 1}}
}

func (v *Value) Mul(o *Value) *Value {
	return &Value{Data: v.Data * o.Data, children: []*Value{v, o}, local: []float64{o.Data, v.Data}}
}

// Scale multiplies by a constant without allocating a leaf for it.
func (v *Value) Scale(c float64) *Value {
	return &Value{Data: v.Data * c, children: []*Value{v}, local: []float64{c}}
}

// Shift adds a constant.
func (v *Value) Shift(c float64) *Value {
	return &Value{Data: v.Data + c, children: []*Value{v}, local: []float64{1}}
}

func (v *Value) Pow(p float64) *Value {
	return &Value{
		Data:     math.Pow(v.Data, p),
		children: []*Value{v},
		local:    []float64{p * math.Pow(v.Data, p-1)},
	}
}

func (v *Value) Log() *Value {
	return &Value{Data: math.Log(v.Data), children: []*Value{v}, local: []float64{1 / v.Data}}
}

func (v *Value) Exp() *Value {
	e := math.Exp(v.Data)
	return &Value{Data: e, children: []*Value{v}, local: []float64{e}}
}

func (v *Value) Relu() *Value {
	grad := 0.0
	if v.Data > 0 {
		grad = 1
	}
	return &Value{Data: math.Max(0, v.Data), children: []*Value{v}, local: []float64{grad}}
}

// Backward propagates gradients from v to every node reachable from it, in
// reverse topological order.
func (v *Value) Backward() {
	var topo []*Value
	visited := make(map[*Value]struct{})
	// iterative DFS; deep graphs from long sequences overflow recursion quickly
	type frame struct {
		node *Value
		next int
	}
	stack := []frame{{node: v}}
	visited[v] = struct{}{}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.children) {
			child := top.node.children[top.next]
			top.next++
			if _, seen := visited[child]; !seen {
				visited[child] = struct{}{}
				stack = append(stack, frame{node: child})
			}
			continue
		}
		topo = append(topo, top.node)
		stack = stack[:len(stack)-1]
	}

	v.Grad = 1
	for i := len(topo) - 1; i >= 0; i-- {
		node := topo[i]
		for j, child := range node.children {
			child.Grad += node.local[j] * node.Grad
		}
	}
}
