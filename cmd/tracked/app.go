package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"tracked/internal/config"
	"tracked/internal/lifecycle"
	"tracked/internal/logging"
	"tracked/internal/metrics"
	"tracked/internal/motion"
	"tracked/internal/resource"
	"tracked/internal/watcher"
)

// appDeps carries what tests replace.
type appDeps struct {
	Clock    clock.Clock
	Metrics  *metrics.Registry
	LogOut   io.Writer
	Defaults []byte
	// NoWatch disables fsnotify; resources are still polled.
	NoWatch bool
}

// application is one run: settings, resources, a mover following the route
// and a camera tracking it, all driven by the frame loop.
type application struct {
	runID      string
	configPath string
	overrides  map[string]any
	defaults   []byte
	settings   config.Settings

	logger   *logging.Logger
	metrics  *metrics.Registry
	teardown *lifecycle.Teardown

	live      *config.Live
	watcher   *watcher.Watcher
	resources *resource.Manager
	route     *resource.File[routeSpec]
	loop      *motion.Loop
	input     *motion.Input
	mover     *motion.Mover
	follower  *motion.Follower
	camera    *motion.Camera
	orbit     float64
}

func newApplication(settings config.Settings, configPath string, overrides map[string]any, deps appDeps) (*application, error) {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Default
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	runID := uuid.NewString()
	buffer := logging.NewLogBuffer(int(settings.Log.BufferSize))
	logger := logging.NewLoggerWithOutput(buffer, settings.Log.Level, deps.LogOut).
		With(map[string]string{"run": runID})

	app := &application{
		runID:      runID,
		configPath: configPath,
		overrides:  overrides,
		defaults:   deps.Defaults,
		settings:   settings,
		logger:     logger,
		metrics:    deps.Metrics,
		teardown:   lifecycle.NewTeardown(logger, deps.Metrics),
	}
	if err := app.build(deps); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *application) build(deps appDeps) error {
	var err error
	if a.live, err = config.NewLive(a.settings); err != nil {
		return fmt.Errorf("live settings: %w", err)
	}
	a.teardown.AddCloser("live settings", a.live)
	a.teardown.AddFunc("log level", logging.FollowLevel(a.logger, a.live.LogLevel()))

	if !deps.NoWatch {
		a.watcher, err = watcher.NewWithOptions(watcher.Options{
			Logger:   a.logger,
			Debounce: a.settings.Resources.Debounce,
		})
		if err != nil {
			a.logger.Warn("file watcher unavailable, polling only", map[string]string{
				"error": err.Error(),
			})
			a.watcher = nil
		} else {
			a.teardown.AddCloser("watcher", a.watcher)
		}
	}

	a.loop = motion.NewLoop(motion.LoopOptions{
		Tick:    a.settings.Frame.Tick,
		Clock:   deps.Clock,
		Logger:  a.logger,
		Metrics: a.metrics,
	})
	a.teardown.AddCloser("frame loop", a.loop)

	a.input = motion.NewInput()
	a.teardown.AddCloser("input", a.input)
	if a.mover, err = motion.NewMover(motion.Ray{Direction: motion.Forward}, moverParams(a.settings.Motion)); err != nil {
		return fmt.Errorf("mover: %w", err)
	}
	a.teardown.AddCloser("mover", a.mover)
	a.follower = motion.NewFollower(a.mover)
	a.teardown.AddCloser("follower", a.follower)
	if a.camera, err = motion.NewCamera(a.input, a.mover, cameraParams(a.settings.Camera)); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	a.teardown.AddCloser("camera", a.camera)

	a.wireLive()
	a.follower.Arrived().Observe(func(_ *motion.Follower, index int) {
		a.logger.Debug("waypoint reached", map[string]string{"index": strconv.Itoa(index)})
	})
	a.loop.Ticks().Observe(func(_ *motion.Loop, dt time.Duration) {
		a.frame(dt)
	})

	managerOptions := resource.ManagerOptions{
		Dir:          a.settings.Resources.Dir,
		PollInterval: a.settings.Resources.PollInterval,
		HistorySize:  int(a.settings.Resources.HistorySize),
		Logger:       a.logger,
		Metrics:      a.metrics,
		Clock:        deps.Clock,
	}
	if a.watcher != nil {
		managerOptions.Watch = a.watcher
	}
	a.resources = resource.NewManager(managerOptions)
	a.teardown.AddCloser("resources", a.resources)
	if a.watcher != nil {
		// Lost events leave resources stale; poll them all to catch up.
		a.teardown.AddFunc("watcher errors", a.watcher.OnError(func(error) {
			a.resources.PollAll()
		}))
	}
	if a.route, err = resource.Register[routeSpec](a.resources, routeResource, decodeRoute); err != nil {
		return fmt.Errorf("register %s: %w", routeResource, err)
	}
	if snapshot := a.route.Snapshot(); snapshot != nil {
		a.applyRoute(snapshot)
	}
	a.route.OnRefresh(func(snapshot *resource.Snapshot[routeSpec]) {
		a.loop.Post(func() { a.applyRoute(snapshot) })
	})
	return nil
}

// wireLive connects live settings to their consumers. Apply runs on the loop
// goroutine, so these handlers do too.
func (a *application) wireLive() {
	a.live.Tick().Observe(func(_ *config.Live, _, next time.Duration) {
		a.loop.SetTick(next)
	})
	a.live.Motion().Observe(func(_ *config.Live, _, next config.MotionSettings) {
		if err := a.mover.SetParams(moverParams(next)); err != nil {
			a.logger.Warn("motion settings rejected", map[string]string{"error": err.Error()})
		}
	})
	a.live.Camera().Observe(func(_ *config.Live, _, next config.CameraSettings) {
		a.camera.SetParams(cameraParams(next))
	})
}

func (a *application) applyRoute(snapshot *resource.Snapshot[routeSpec]) {
	if err := a.follower.SetWaypoints(snapshot.Data.Waypoints, snapshot.Data.Repeat); err != nil {
		a.logger.Warn("route rejected", map[string]string{
			"revision": snapshot.ID,
			"error":    err.Error(),
		})
		return
	}
	a.orbit = snapshot.Data.Orbit
	a.logger.Info("route applied", map[string]string{
		"revision":  snapshot.ID,
		"waypoints": strconv.Itoa(len(snapshot.Data.Waypoints)),
	})
}

func (a *application) frame(dt time.Duration) {
	if a.orbit != 0 {
		a.input.DragRotate(a.orbit * dt.Seconds())
	}
	if err := a.mover.Update(dt); err != nil {
		a.logger.Error("mover update failed", map[string]string{"error": err.Error()})
		return
	}
	if err := a.follower.Update(); err != nil {
		a.logger.Warn("follower update failed", map[string]string{"error": err.Error()})
	}
	a.camera.Update(dt)
}

// watchConfig reloads the settings file on change and applies it on the
// loop goroutine.
func (a *application) watchConfig() {
	if a.watcher == nil || a.configPath == "" {
		return
	}
	handle, err := a.watcher.Watch(a.configPath, func(watcher.Event) {
		settings, err := config.LoadSettings(a.configPath, a.defaults, a.overrides)
		if err != nil {
			a.logger.Warn("settings reload failed", map[string]string{
				"path":  a.configPath,
				"error": err.Error(),
			})
			return
		}
		a.loop.Post(func() { a.live.Apply(settings) })
	})
	if err != nil {
		a.logger.Warn("settings watch failed", map[string]string{
			"path":  a.configPath,
			"error": err.Error(),
		})
		return
	}
	a.teardown.AddCloser("settings watch", handle)
}

// Run drives frames until ctx ends or the frame budget is spent. A canceled
// context is a normal stop.
func (a *application) Run(ctx context.Context) error {
	if err := a.resources.Start(ctx); err != nil {
		return err
	}
	a.watchConfig()
	a.logger.Info("run started", map[string]string{
		"resources": filepath.Clean(a.settings.Resources.Dir),
		"tick":      a.settings.Frame.Tick.String(),
		"frames":    strconv.FormatInt(a.settings.Frame.Frames, 10),
	})
	err := a.loop.Run(ctx, a.settings.Frame.Frames)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	position := a.mover.Position()
	a.logger.Info("run finished", map[string]string{
		"frames":   strconv.FormatInt(a.loop.Frames(), 10),
		"position": formatVec(position),
	})
	return err
}

func (a *application) Close() error {
	return a.teardown.Close()
}

func moverParams(settings config.MotionSettings) motion.MoverParams {
	return motion.MoverParams{
		MoveSpeed:      settings.MoveSpeed,
		RotateSpeed:    settings.RotateSpeed,
		AccelerateTime: settings.AccelerateTime,
		StopAngle:      settings.StopAngle,
	}
}

func cameraParams(settings config.CameraSettings) motion.CameraParams {
	params := motion.DefaultCameraParams()
	params.PivotHeight = settings.PivotHeight
	params.RotateSensitivity = settings.RotateSensitivity
	params.ElevateSensitivity = settings.ElevateSensitivity
	params.StartHeight = settings.StartHeight
	return params
}

func formatVec(v motion.Vec3) string {
	return fmt.Sprintf("%.2f,%.2f,%.2f", v.X, v.Y, v.Z)
}
