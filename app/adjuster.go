package app

// Adjuster changes a float parameter by Step every frame while one of its
// keys is held, keeping it within [Min, Max].
type Adjuster struct {
	Name string
	Step float32
	Min  float32
	Max  float32

	Get func() float32
	Set func(float32)

	inc bool
	dec bool
}

// Update applies one step and reports the new value and whether it changed.
func (a *Adjuster) Update() (float32, bool) {
	old := a.Get()
	v := old
	if a.inc {
		v += a.Step
	}
	if a.dec {
		v -= a.Step
	}
	if v < a.Min {
		v = a.Min
	}
	if v > a.Max {
		v = a.Max
	}
	if v == old {
		return old, false
	}
	a.Set(v)
	return v, true
}
