package motion

import "tracked/internal/event"

// Input publishes camera drags. Deltas are fractions of a full turn for
// rotation and of the elevation range for elevation.
type Input struct {
	rotate         *event.Notifier1[*Input, float64]
	triggerRotate  *event.Trigger1[*Input, float64]
	elevate        *event.Notifier1[*Input, float64]
	triggerElevate *event.Trigger1[*Input, float64]
}

func NewInput() *Input {
	input := &Input{}
	input.rotate, input.triggerRotate = event.New1[*Input, float64](input)
	input.elevate, input.triggerElevate = event.New1[*Input, float64](input)
	return input
}

func (i *Input) Rotate() *event.Notifier1[*Input, float64] { return i.rotate }

func (i *Input) Elevate() *event.Notifier1[*Input, float64] { return i.elevate }

func (i *Input) DragRotate(delta float64) {
	if delta == 0 {
		return
	}
	i.triggerRotate.Invoke(delta)
}

func (i *Input) DragElevate(delta float64) {
	if delta == 0 {
		return
	}
	i.triggerElevate.Invoke(delta)
}

func (i *Input) Close() error {
	i.triggerRotate.Dispose()
	i.triggerElevate.Dispose()
	return nil
}
