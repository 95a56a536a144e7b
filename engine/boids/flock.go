// Package boids owns the fish school: per-boid transforms, the per-instance vertex buffer they are
// written to each frame, and the read-only tint storage group the scene shader colours them with.
package boids

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer"
	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

var errReleased = errors.New("flock: released")

const (
	InstanceBufferLabel = "instance_buffer"
	TintBufferLabel     = "tint_buffer"
	TintsGroupLabel     = "tints_bind_group"
)

type flock struct {
	count    int
	radius   float32
	maxSpeed float32
	seed     uint64
	seeded   bool

	boids []Boid
	tints []GPUTint

	instanceBuffer gpu.Buffer
	tintsProvider  bind_group_provider.BindGroupProvider
	instanceData   []byte
}

// Flock is the instanced fish school. It implements renderer.Uploader: Update advances the
// motion on the CPU and Upload rewrites the instance buffer in place before the frame is acquired.
type Flock interface {
	renderer.Uploader

	// Count returns the number of boids.
	Count() int

	// Boids returns the live boid states. The slice is owned by the flock.
	//
	// Returns:
	//   - []Boid: one entry per instance, in instance order
	Boids() []Boid

	// Tints returns the per-instance colours uploaded to the tint storage buffer.
	//
	// Returns:
	//   - []GPUTint: one entry per instance
	Tints() []GPUTint

	// Update advances the motion step by dt seconds. A flock with zero max speed stays still.
	//
	// Parameters:
	//   - dt: seconds since the previous update
	Update(dt float32)

	// InstanceBuffer returns the per-instance vertex buffer (VERTEX | COPY_DST).
	InstanceBuffer() gpu.Buffer

	// TintsProvider returns the provider owning the tint storage group and buffer.
	TintsProvider() bind_group_provider.BindGroupProvider

	// DrawItem extends a mesh draw with the flock's instance buffer, tint group and instance count.
	//
	// Parameters:
	//   - mesh: the non-instanced draw of the boid model
	//
	// Returns:
	//   - renderer.DrawItem: the instanced draw item
	DrawItem(mesh renderer.DrawItem) renderer.DrawItem

	// Release frees the instance buffer and the tint group and buffer. The shared layout is left alive.
	Release()
}

var _ Flock = &flock{}

// NewFlock scatters the boids uniformly in the cube [-radius, radius)^3 with random RGB tints,
// allocates the instance and tint buffers and creates the tint group against the shared tints layout.
// The tints are uploaded once; the instance buffer is filled by the first Upload.
//
// Parameters:
//   - ctx: the device context
//   - tintsLayout: the renderer's read-only storage layout for tints
//   - options: variadic list of FlockBuilderOption functions to configure the flock
//
// Returns:
//   - Flock: the flock
//   - error: error if the count is not positive or an allocation fails
func NewFlock(ctx *gpu.Context, tintsLayout *bind_group_provider.Layout, options ...FlockBuilderOption) (Flock, error) {
	f := &flock{
		count:    50,
		radius:   20,
		maxSpeed: 4,
	}
	for _, opt := range options {
		opt(f)
	}
	if f.count <= 0 {
		return nil, fmt.Errorf("flock: count must be positive, got %d", f.count)
	}
	if !f.seeded {
		f.seed = rand.Uint64()
	}

	rng := rand.New(rand.NewPCG(f.seed, f.seed))
	coord := func() float32 { return (rng.Float32()*2 - 1) * f.radius }
	f.boids = common.MapRange(f.count, func(int) Boid {
		b := Boid{
			Position: mgl32.Vec3{coord(), coord(), coord()},
			Rotation: mgl32.QuatIdent(),
		}
		if f.maxSpeed > 0 {
			dir := mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
			if dir.Len() == 0 {
				dir = forward
			}
			b.Velocity = dir.Normalize().Mul(f.maxSpeed / 2)
			b.Rotation = heading(b.Velocity)
		}
		return b
	})
	f.tints = common.MapRange(f.count, func(int) GPUTint {
		return GPUTint{Color: [4]float32{rng.Float32(), rng.Float32(), rng.Float32(), 1}}
	})
	f.instanceData = make([]byte, f.count*64)

	if err := f.allocate(ctx, tintsLayout); err != nil {
		f.Release()
		return nil, err
	}
	common.Logger().Debug("flock created", "count", f.count, "radius", f.radius, "seed", f.seed)
	return f, nil
}

func (f *flock) allocate(ctx *gpu.Context, tintsLayout *bind_group_provider.Layout) error {
	var err error
	f.instanceBuffer, err = ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: InstanceBufferLabel,
		Size:  uint64(len(f.instanceData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("flock instance buffer: %w", err)
	}

	tintData := MarshalTints(f.tints)
	tintBuffer, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: TintBufferLabel,
		Size:  uint64(len(tintData)),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("flock tint buffer: %w", err)
	}

	desc := tintsLayout.DescriptorFor(TintsGroupLabel, gpu.BindingResource{Buffer: tintBuffer})
	f.tintsProvider, err = bind_group_provider.NewBindGroupProvider(ctx.Device, desc,
		bind_group_provider.WithSharedLayout(tintsLayout),
		bind_group_provider.WithBuffer(0, tintBuffer),
	)
	if err != nil {
		tintBuffer.Release()
		return fmt.Errorf("flock tints: %w", err)
	}

	return bind_group_provider.WriteBuffers(ctx.Queue, []bind_group_provider.BufferWrite{
		{Provider: f.tintsProvider, Binding: 0, Data: tintData},
	})
}

func (f *flock) Count() int {
	return f.count
}

func (f *flock) Boids() []Boid {
	return f.boids
}

func (f *flock) Tints() []GPUTint {
	return f.tints
}

func (f *flock) Update(dt float32) {
	if f.maxSpeed <= 0 || dt <= 0 {
		return
	}
	step(f.boids, dt, f.radius, f.maxSpeed)
}

func (f *flock) Upload(queue gpu.Queue) error {
	if f.instanceBuffer == nil {
		return errReleased
	}
	for i := range f.boids {
		inst := f.boids[i].Instance()
		inst.put(f.instanceData[i*64:])
	}
	queue.WriteBuffer(f.instanceBuffer, 0, f.instanceData)
	return nil
}

func (f *flock) InstanceBuffer() gpu.Buffer {
	return f.instanceBuffer
}

func (f *flock) TintsProvider() bind_group_provider.BindGroupProvider {
	return f.tintsProvider
}

func (f *flock) DrawItem(mesh renderer.DrawItem) renderer.DrawItem {
	mesh.InstanceBuffer = f.instanceBuffer
	mesh.InstanceCount = uint32(f.count)
	if f.tintsProvider != nil {
		mesh.Tints = f.tintsProvider.BindGroup()
	}
	return mesh
}

func (f *flock) Release() {
	if f.instanceBuffer != nil {
		f.instanceBuffer.Release()
		f.instanceBuffer = nil
	}
	if f.tintsProvider != nil {
		f.tintsProvider.Release()
		f.tintsProvider = nil
	}
}
