package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/xopoww/go-volcloud/app"
	"github.com/xopoww/go-volcloud/cloud"
	"github.com/xopoww/go-volcloud/config"
	"github.com/xopoww/go-volcloud/glutils"
	"github.com/xopoww/go-volcloud/reload"
	"github.com/xopoww/go-volcloud/scenery"
	"github.com/xopoww/go-volcloud/shaders"
)

var (
	quad = []float32{
		-1, -1, 0,
		1, -1, 0,
		-1, 1, 0,
		1, -1, 0,
		-1, 1, 0,
		1, 1, 0,
	}
)

const reloadDebounce = 200 * time.Millisecond

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func run(ctx context.Context, cfg config.Config, cfgPath string, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Initialize GLFW and GL, create window
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfwBool(cfg.Window.Resizable))
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	// Initialize Glow
	if err := gl.Init(); err != nil {
		return fmt.Errorf("init gl: %w", err)
	}
	logger.Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	fbWidth, fbHeight := window.GetFramebufferSize()

	opts := cloud.Options{
		Width:      fbWidth,
		Height:     fbHeight,
		Near:       cfg.Camera.Near,
		Far:        cfg.Camera.Far,
		Params:     cfg.Cloud,
		Atmosphere: cfg.Atmosphere,
		NoiseSizes: cfg.Noise,
		Sources:    shaders.NewLoader(os.DirFS(cfg.Shaders.Dir)),
		Logger:     logger.Named("cloud"),
	}
	clouds, err := cloud.New(glutils.NewDevice(logger.Named("gl")), opts)
	if err != nil {
		return err
	}
	defer clouds.Delete()

	quadProgram, err := glutils.CreateProgram(
		glutils.NewShaderSource("vert.glsl", shaders.Vert, gl.VERTEX_SHADER),
		glutils.NewShaderSource("frag.glsl", shaders.Frag, gl.FRAGMENT_SHADER),
	)
	if err != nil {
		return fmt.Errorf("create quad program: %w", err)
	}
	defer gl.DeleteProgram(quadProgram)
	texLoc, err := glutils.UniformLocation(quadProgram, "tex")
	if err != nil {
		return fmt.Errorf("quad program: %w", err)
	}
	gl.UseProgram(quadProgram)
	gl.Uniform1i(texLoc, 0)
	gl.UseProgram(0)
	vao := glutils.MakeVao(quad)

	// Init the event handler
	eventHandler := app.NewEventHandler()
	window.SetKeyCallback(eventHandler.KeyCallback())

	screenshotRequested := false
	eventHandler.AddOption(glfw.KeyF3, &screenshotRequested, app.Switch)

	paused := false
	eventHandler.AddOption(glfw.KeyP, &paused, app.Switch)

	adjusters := bindControls(eventHandler, clouds)

	camera := scenery.NewCamera(cfg.Camera.Position, cfg.Camera.LookAt, cfg.Camera.FOV, cfg.Camera.Speed)
	camera.AttachToEventHandler(eventHandler)

	resized := false
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		fbWidth, fbHeight = width, height
		resized = true
	})

	var changes <-chan reload.Change
	if cfg.Shaders.Watch {
		watcher, err := reload.NewWatcher(cfgPath, cfg.Shaders.Dir, reloadDebounce, logger.Named("reload"))
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		} else {
			watcher.Start(ctx)
			defer watcher.Stop()
			changes = watcher.Changes()
		}
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	glfw.SetTime(0.0)
	last := glfw.GetTime()
	animTime := 0.0
	// Main loop
	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := glfw.GetTime()
		if !paused {
			animTime += now - last
		}
		last = now

		select {
		case change, ok := <-changes:
			if ok {
				applyChange(change, clouds, logger)
			}
		default:
		}

		// minimized windows report a zero framebuffer
		if resized && fbWidth > 0 && fbHeight > 0 {
			resized = false
			if err := clouds.Resize(fbWidth, fbHeight); err != nil {
				return err
			}
		}
		if fbWidth == 0 || fbHeight == 0 {
			glfw.WaitEvents()
			continue
		}

		if err := clouds.Render(camera, float32(animTime)); err != nil {
			return err
		}

		// Composite the cloud texture over the frame
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.UseProgram(quadProgram)
		gl.BindVertexArray(vao)
		clouds.CloudTexture().BindSampler(0)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(quad)/3))
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.UseProgram(0)

		// Check for errors
		if err := glutils.CheckError(); err != nil {
			return fmt.Errorf("render frame: %w", err)
		}

		if screenshotRequested {
			screenshotRequested = false
			takeScreenshot(clouds, cfg.Screenshots.Dir, logger)
		}

		window.SwapBuffers()
		glfw.PollEvents()

		camera.Update()
		for _, adj := range adjusters {
			if v, changed := adj.Update(); changed {
				logger.Debug("parameter changed", zap.String("name", adj.Name), zap.Float32("value", v))
			}
		}
	}
	return nil
}

func applyChange(change reload.Change, clouds *cloud.Cloud, logger *zap.Logger) {
	switch change.Kind {
	case reload.ConfigChanged:
		cfg, err := config.Load(change.Path)
		if err != nil {
			logger.Warn("config not reloaded", zap.Error(err))
			return
		}
		clouds.SetParams(cfg.Cloud)
		clouds.SetAtmosphere(cfg.Atmosphere)
		logger.Info("config reloaded", zap.String("path", change.Path))
	case reload.ShadersChanged:
		if err := clouds.ReloadShaders(); err != nil {
			logger.Error("shaders not reloaded", zap.String("path", change.Path), zap.Error(err))
		}
	}
}

func takeScreenshot(clouds *cloud.Cloud, dir string, logger *zap.Logger) {
	w, h := clouds.Size()
	img, err := glutils.GetImage(clouds.CloudTexture().ID(), w, h)
	if err != nil {
		logger.Warn("failed to take a screenshot", zap.Error(err))
		return
	}
	go func() {
		filename, err := saveScreenshot(img, dir, time.Now())
		if err != nil {
			logger.Warn("failed to save a screenshot", zap.Error(err))
			return
		}
		logger.Info("saved a screenshot", zap.String("file", filename))
	}()
}
