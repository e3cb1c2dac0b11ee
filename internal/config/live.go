package config

import (
	"fmt"
	"time"

	"tracked/internal/logging"
	"tracked/internal/observable"
)

// Live publishes the settings that may change while the program runs. Apply
// is the only writer; everything else reads or subscribes through the
// accessors. Live is confined to the goroutine that calls Apply.
type Live struct {
	logLevel *observable.Value[*Live, logging.Level]
	tick     *observable.Value[*Live, time.Duration]
	motion   *observable.Value[*Live, MotionSettings]
	camera   *observable.Value[*Live, CameraSettings]

	setLogLevel *observable.Control[logging.Level]
	setTick     *observable.Control[time.Duration]
	setMotion   *observable.Control[MotionSettings]
	setCamera   *observable.Control[CameraSettings]
}

func NewLive(settings Settings) (*Live, error) {
	live := &Live{}
	var err error
	if live.logLevel, live.setLogLevel, err = observable.NewEnum(live, settings.Log.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if live.tick, live.setTick, err = observable.NewComparable(live, settings.Frame.Tick); err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	if live.motion, live.setMotion, err = observable.NewComparable(live, settings.Motion); err != nil {
		return nil, fmt.Errorf("motion: %w", err)
	}
	if live.camera, live.setCamera, err = observable.NewComparable(live, settings.Camera); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	return live, nil
}

func (l *Live) LogLevel() *observable.Value[*Live, logging.Level] { return l.logLevel }

func (l *Live) Tick() *observable.Value[*Live, time.Duration] { return l.tick }

func (l *Live) Motion() *observable.Value[*Live, MotionSettings] { return l.motion }

func (l *Live) Camera() *observable.Value[*Live, CameraSettings] { return l.camera }

// Apply publishes settings. Only the fields that differ from the current
// values notify their subscribers.
func (l *Live) Apply(settings Settings) {
	if l == nil {
		return
	}
	l.setLogLevel.Set(settings.Log.Level)
	l.setTick.Set(settings.Frame.Tick)
	l.setMotion.Set(settings.Motion)
	l.setCamera.Set(settings.Camera)
}

// Close disposes every published value.
func (l *Live) Close() error {
	if l == nil {
		return nil
	}
	l.setLogLevel.Dispose()
	l.setTick.Dispose()
	l.setMotion.Dispose()
	l.setCamera.Dispose()
	return nil
}
