package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/xopoww/go-volcloud/app"
	"github.com/xopoww/go-volcloud/cloud"
)

// tunable is the part of *cloud.Cloud the keyboard controls change.
type tunable interface {
	Params() cloud.Params
	SetCoverage(float32)
	SetDensity(float32)
	SetAbsorption(float32)
	SetCrispiness(float32)
	SetSpeed(float32)
	SetCurliness(float32)
}

type control struct {
	inc, dec glfw.Key
	adj      *app.Adjuster
}

func controls(c tunable) []control {
	return []control{
		{glfw.Key1, glfw.Key2, &app.Adjuster{
			Name: "coverage", Step: 0.005, Min: 0, Max: 1,
			Get: func() float32 { return c.Params().Coverage }, Set: c.SetCoverage,
		}},
		{glfw.Key3, glfw.Key4, &app.Adjuster{
			Name: "density", Step: 0.0005, Min: 0, Max: 0.2,
			Get: func() float32 { return c.Params().Density }, Set: c.SetDensity,
		}},
		{glfw.Key5, glfw.Key6, &app.Adjuster{
			Name: "absorption", Step: 0.0001, Min: 0, Max: 0.1,
			Get: func() float32 { return c.Params().Absorption }, Set: c.SetAbsorption,
		}},
		{glfw.Key7, glfw.Key8, &app.Adjuster{
			Name: "crispiness", Step: 0.5, Min: 0, Max: 100,
			Get: func() float32 { return c.Params().Crispiness }, Set: c.SetCrispiness,
		}},
		{glfw.Key9, glfw.Key0, &app.Adjuster{
			Name: "speed", Step: 10, Min: 0, Max: 5000,
			Get: func() float32 { return c.Params().Speed }, Set: c.SetSpeed,
		}},
		{glfw.KeyEqual, glfw.KeyMinus, &app.Adjuster{
			Name: "curliness", Step: 0.005, Min: 0, Max: 1,
			Get: func() float32 { return c.Params().Curliness }, Set: c.SetCurliness,
		}},
	}
}

func bindControls(eh *app.EventHandler, c tunable) []*app.Adjuster {
	var adjusters []*app.Adjuster
	for _, ctl := range controls(c) {
		eh.AddAdjuster(ctl.inc, ctl.dec, ctl.adj)
		adjusters = append(adjusters, ctl.adj)
	}
	return adjusters
}
