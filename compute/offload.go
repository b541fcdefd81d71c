package compute

import (
	"fmt"
	"math"

	"github.com/pthm-cable/galaxy/components"
	"github.com/pthm-cable/galaxy/systems"
)

// defaultWorkGroupSize matches the local size the move kernel was tuned for.
const defaultWorkGroupSize = 500

// Per-item status codes written by the move kernel.
const (
	statusOK      int32 = 0
	statusStalled int32 = 1
)

// deviceBuffers is the structure-of-arrays layout the kernel operates on.
type deviceBuffers struct {
	x, y, vx, vy []float64
	mass         []int32
}

func (b *deviceBuffers) resize(n int) {
	if cap(b.x) >= n {
		b.x, b.y, b.vx, b.vy, b.mass = b.x[:n], b.y[:n], b.vx[:n], b.vy[:n], b.mass[:n]
		return
	}
	b.x = make([]float64, n)
	b.y = make([]float64, n)
	b.vx = make([]float64, n)
	b.vy = make([]float64, n)
	b.mass = make([]int32, n)
}

// Offload runs the move kernel on a Device.
//
// Each call uploads the active bodies, launches one work-item per body
// over a global range rounded up to the work-group size, waits for the
// completion event, and reads results and per-item status back.
type Offload struct {
	params    systems.Params
	device    Device
	groupSize int

	input  deviceBuffers
	output deviceBuffers
	status []int32
}

// NewOffload creates an offload backend on the given device.
func NewOffload(params systems.Params, device Device, groupSize int) *Offload {
	if groupSize < 1 {
		groupSize = defaultWorkGroupSize
	}
	return &Offload{
		params:    params,
		device:    device,
		groupSize: groupSize,
	}
}

// Name returns the backend name.
func (o *Offload) Name() string { return BackendOffload }

// Device returns the device the kernel runs on.
func (o *Offload) Device() Device { return o.device }

// ComputeNextGeneration integrates current[:active] into next[:active].
func (o *Offload) ComputeNextGeneration(current, next []components.Body, active int) error {
	if active == 0 {
		return nil
	}

	o.upload(current, active)

	global := (active + o.groupSize - 1) / o.groupSize * o.groupSize
	ev, err := o.device.Enqueue(o.moveKernel(active), global, o.groupSize)
	if err != nil {
		return fmt.Errorf("enqueueing move kernel on %s: %w", o.device.Name(), err)
	}
	ev.Wait()

	return o.download(next, active)
}

// Close releases device buffers.
func (o *Offload) Close() error {
	o.input = deviceBuffers{}
	o.output = deviceBuffers{}
	o.status = nil
	return nil
}

// upload packs host bodies into the input buffers.
func (o *Offload) upload(current []components.Body, n int) {
	o.input.resize(n)
	o.output.resize(n)
	if cap(o.status) < n {
		o.status = make([]int32, n)
	}
	o.status = o.status[:n]

	for i := 0; i < n; i++ {
		b := &current[i]
		o.input.x[i] = b.X
		o.input.y[i] = b.Y
		o.input.vx[i] = b.VX
		o.input.vy[i] = b.VY
		o.input.mass[i] = b.Mass
	}
}

// download unpacks the output buffers and reports the lowest stalled body.
func (o *Offload) download(next []components.Body, n int) error {
	var err error
	for i := 0; i < n; i++ {
		next[i] = components.Body{
			X:    o.output.x[i],
			Y:    o.output.y[i],
			VX:   o.output.vx[i],
			VY:   o.output.vy[i],
			Mass: o.output.mass[i],
		}
		if err == nil && o.status[i] == statusStalled {
			err = systems.StalledBody(i)
		}
	}
	return err
}

// moveKernel returns the per-body gravity kernel bound to the current
// buffers. Work-items past n do nothing.
func (o *Offload) moveKernel(n int) Kernel {
	in, out, status := &o.input, &o.output, o.status
	g := o.params.G
	border := o.params.Border

	return func(i int) {
		if i >= n {
			return
		}

		xi, yi := in.x[i], in.y[i]
		var axSum, aySum float64
		for k := 0; k < n; k++ {
			if k == i {
				continue
			}
			dx := xi - in.x[k]
			dy := yi - in.y[k]
			dist2 := dx*dx + dy*dy
			if dist2 == 0 {
				continue
			}
			dist := math.Sqrt(dist2)
			a := float64(in.mass[k]) / dist2
			axSum += a * (dx / dist)
			aySum += a * (dy / dist)
		}

		x := xi + in.vx[i]
		y := yi + in.vy[i]
		vx := in.vx[i] - g*axSum
		vy := in.vy[i] - g*aySum
		out.x[i], out.y[i], out.vx[i], out.vy[i] = x, y, vx, vy

		status[i] = statusOK
		if i > 0 && vx == 0 && vy == 0 {
			status[i] = statusStalled
		}

		if systems.OutOfSpace(x, y, border) {
			out.mass[i] = components.SentinelMass
		} else {
			out.mass[i] = in.mass[i]
		}
	}
}
