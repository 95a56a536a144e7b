package bind_group_provider

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// LayoutLabelSuffix is appended to a descriptor's label to name the layout created for it.
const LayoutLabelSuffix = "_layout"

var (
	// ErrDuplicateBinding is returned when two entries of one descriptor share a binding number.
	ErrDuplicateBinding = errors.New("bind group: duplicate binding number")

	// ErrLayoutMismatch is returned when a descriptor is bound against a layout of a different shape.
	ErrLayoutMismatch = errors.New("bind group: descriptor does not match layout")
)

// Entry is one binding of a Descriptor: the layout half (binding, visibility, type, count)
// together with the resource bound to it.
type Entry struct {
	Binding    uint32
	Visibility wgpu.ShaderStage
	Type       gpu.BindingType
	// Count is the array arity of the binding; zero means not an array.
	Count    uint32
	Resource gpu.BindingResource
}

// Descriptor declares a bind group and its layout in one place.
type Descriptor struct {
	Label   string
	Entries []Entry
}

// Validate reports ErrDuplicateBinding if two entries share a binding number.
//
// Returns:
//   - error: nil if every binding number is unique
func (d Descriptor) Validate() error {
	return validateBindings(d.Label, len(d.Entries), func(i int) uint32 { return d.Entries[i].Binding })
}

// LayoutEntries projects every entry to its layout half, preserving order.
//
// Returns:
//   - []gpu.BindGroupLayoutEntry: one layout entry per descriptor entry
func (d Descriptor) LayoutEntries() []gpu.BindGroupLayoutEntry {
	out := make([]gpu.BindGroupLayoutEntry, len(d.Entries))
	for i, e := range d.Entries {
		out[i] = gpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: e.Visibility,
			Type:       e.Type,
			Count:      e.Count,
		}
	}
	return out
}

// GroupEntries projects every entry to its (binding, resource) half, preserving order.
//
// Returns:
//   - []gpu.BindGroupEntry: one group entry per descriptor entry
func (d Descriptor) GroupEntries() []gpu.BindGroupEntry {
	out := make([]gpu.BindGroupEntry, len(d.Entries))
	for i, e := range d.Entries {
		out[i] = gpu.BindGroupEntry{
			Binding:  e.Binding,
			Resource: e.Resource,
		}
	}
	return out
}

// LayoutLabel returns the layout label derived from a group label. An empty label stays empty.
func LayoutLabel(label string) string {
	if label == "" {
		return ""
	}
	return label + LayoutLabelSuffix
}

// Layout is a bind group layout together with the entry shape it was created from.
// Groups created against a Layout must have the same shape.
type Layout struct {
	handle  gpu.BindGroupLayout
	label   string
	entries []gpu.BindGroupLayoutEntry
}

// Handle returns the GPU layout object.
func (l *Layout) Handle() gpu.BindGroupLayout {
	return l.handle
}

// Label returns the layout's debug label.
func (l *Layout) Label() string {
	return l.label
}

// Entries returns a copy of the layout's entries.
func (l *Layout) Entries() []gpu.BindGroupLayoutEntry {
	return append([]gpu.BindGroupLayoutEntry(nil), l.entries...)
}

// Matches reports whether desc has exactly the layout's shape: same entry count, and for every
// index the same binding, visibility, type and count.
//
// Parameters:
//   - desc: the descriptor to compare
//
// Returns:
//   - bool: true if desc can be bound against this layout
func (l *Layout) Matches(desc Descriptor) bool {
	if len(desc.Entries) != len(l.entries) {
		return false
	}
	for i, e := range desc.LayoutEntries() {
		if e != l.entries[i] {
			return false
		}
	}
	return true
}

// DescriptorFor builds a descriptor with exactly the layout's shape, binding each entry to the
// resource of its kind. Layouts with several entries of one kind bind the same resource to each.
//
// Parameters:
//   - label: the group label
//   - resources: one resource per kind; only the field matching each entry's kind is used
//
// Returns:
//   - Descriptor: a descriptor that Matches the layout
func (l *Layout) DescriptorFor(label string, resources gpu.BindingResource) Descriptor {
	desc := Descriptor{Label: label, Entries: make([]Entry, len(l.entries))}
	for i, e := range l.entries {
		entry := Entry{
			Binding:    e.Binding,
			Visibility: e.Visibility,
			Type:       e.Type,
			Count:      e.Count,
		}
		switch e.Type.Kind() {
		case gpu.BindingKindBuffer:
			entry.Resource = gpu.BindingResource{Buffer: resources.Buffer, Offset: resources.Offset, Size: resources.Size}
		case gpu.BindingKindTexture:
			entry.Resource = gpu.BindingResource{TextureView: resources.TextureView}
		case gpu.BindingKindSampler:
			entry.Resource = gpu.BindingResource{Sampler: resources.Sampler}
		}
		desc.Entries[i] = entry
	}
	return desc
}

// Release frees the GPU layout.
func (l *Layout) Release() {
	if l.handle != nil {
		l.handle.Release()
		l.handle = nil
	}
}

// NewLayout creates a standalone layout that several groups of the same shape can share,
// such as the per-material texture layout.
//
// Parameters:
//   - device: the device to allocate on
//   - label: the layout's debug label, used as is
//   - entries: the layout entries
//
// Returns:
//   - *Layout: the created layout
//   - error: ErrDuplicateBinding, or the device's allocation error
func NewLayout(device gpu.Device, label string, entries []gpu.BindGroupLayoutEntry) (*Layout, error) {
	if err := validateBindings(label, len(entries), func(i int) uint32 { return entries[i].Binding }); err != nil {
		return nil, err
	}
	entries = append([]gpu.BindGroupLayoutEntry(nil), entries...)
	handle, err := device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bind group layout %q: %w", label, err)
	}
	return &Layout{handle: handle, label: label, entries: entries}, nil
}

// Create builds the layout for desc and then the group against it. The two are a pair: the caller
// releases them together, and keeps the layout alive for as long as any pipeline references it.
//
// Parameters:
//   - device: the device to allocate on
//   - desc: the declarative descriptor
//
// Returns:
//   - gpu.BindGroup: the group, labelled desc.Label
//   - *Layout: the layout, labelled desc.Label + LayoutLabelSuffix
//   - error: ErrDuplicateBinding before any allocation, or the device's allocation error
func Create(device gpu.Device, desc Descriptor) (gpu.BindGroup, *Layout, error) {
	if err := desc.Validate(); err != nil {
		return nil, nil, err
	}
	layout, err := NewLayout(device, LayoutLabel(desc.Label), desc.LayoutEntries())
	if err != nil {
		return nil, nil, err
	}
	group, err := device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.handle,
		Entries: desc.GroupEntries(),
	})
	if err != nil {
		layout.Release()
		return nil, nil, fmt.Errorf("bind group %q: %w", desc.Label, err)
	}
	return group, layout, nil
}

// CreateGroup builds a group for desc against an existing layout of the same shape.
//
// Parameters:
//   - device: the device to allocate on
//   - layout: the shared layout
//   - desc: the descriptor; its layout half must match layout
//
// Returns:
//   - gpu.BindGroup: the group, labelled desc.Label
//   - error: ErrDuplicateBinding, ErrLayoutMismatch, or the device's allocation error
func CreateGroup(device gpu.Device, layout *Layout, desc Descriptor) (gpu.BindGroup, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if !layout.Matches(desc) {
		return nil, fmt.Errorf("%w: %q against %q", ErrLayoutMismatch, desc.Label, layout.label)
	}
	group, err := device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.handle,
		Entries: desc.GroupEntries(),
	})
	if err != nil {
		return nil, fmt.Errorf("bind group %q: %w", desc.Label, err)
	}
	return group, nil
}

func validateBindings(label string, n int, binding func(i int) uint32) error {
	seen := make(map[uint32]int, n)
	for i := range n {
		b := binding(i)
		if first, ok := seen[b]; ok {
			return fmt.Errorf("%w: %q uses binding %d at entries %d and %d", ErrDuplicateBinding, label, b, first, i)
		}
		seen[b] = i
	}
	return nil
}
