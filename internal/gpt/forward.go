package gpt

import "math"

// kvCache holds per-layer keys and values for the positions seen so far.
type kvCache struct {
	keys   [][][]*Value
	values [][][]*Value
}

func newKVCache(layers int) *kvCache {
	return &kvCache{
		keys:   make([][][]*Value, layers),
		values: make([][][]*Value, layers),
	}
}

// forward consumes one token at position pos and returns logits for the next
// token. The cache grows by one position per call.
func (m *Model) forward(tokenID, pos int, cache *kvCache) []*Value {
	c := m.Config
	tok := m.state["wte"][tokenID]
	posEmb := m.state["wpe"][pos]
	x := make([]*Value, c.NEmbd)
	for i := range x {
		x[i] = tok[i].Add(posEmb[i])
	}
	x = rmsNorm(x)

	headDim := c.NEmbd / c.NHead
	invSqrt := 1 / math.Sqrt(float64(headDim))

	for li := 0; li < c.NLayer; li++ {
		residual := x
		x = rmsNorm(x)
		q := linear(x, m.state[layerKey(li, "attn_wq")])
		k := linear(x, m.state[layerKey(li, "attn_wk")])
		v := linear(x, m.state[layerKey(li, "attn_wv")])
		cache.keys[li] = append(cache.keys[li], k)
		cache.values[li] = append(cache.values[li], v)

		attn := make([]*Value, 0, c.NEmbd)
		for h := 0; h < c.NHead; h++ {
			hs := h * headDim
			qh := q[hs : hs+headDim]

			scores := make([]*Value, len(cache.keys[li]))
			for t, kt := range cache.keys[li] {
				kh := kt[hs : hs+headDim]
				dot := qh[0].Mul(kh[0])
				for j := 1; j < headDim; j++ {
					dot = dot.Add(qh[j].Mul(kh[j]))
				}
				scores[t] = dot.Scale(invSqrt)
			}
			weights := softmax(scores)

			for j := 0; j < headDim; j++ {
				sum := NewValue(0)
				for t, vt := range cache.values[li] {
					sum = sum.Add(weights[t].Mul(vt[hs+j]))
				}
				attn = append(attn, sum)
			}
		}

		x = linear(attn, m.state[layerKey(li, "attn_wo")])
		for i := range x {
			x[i] = x[i].Add(residual[i])
		}

		residual = x
		x = rmsNorm(x)
		x = linear(x, m.state[layerKey(li, "mlp_fc1")])
		for i := range x {
			x[i] = x[i].Relu()
		}
		x = linear(x, m.state[layerKey(li, "mlp_fc2")])
		for i := range x {
			x[i] = x[i].Add(residual[i])
		}
	}

	return linear(x, m.state["lm_head"])
}
