package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
)

// Binding is one resource declaration reflected from WGSL source.
type Binding struct {
	Group   uint32
	Binding uint32
	Name    string
	Kind    gpu.BindingKind
}

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	// or handle types: @group(1) @binding(0) var t_diffuse: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoints returns the names of the first @vertex and @fragment functions in source.
// A missing stage yields an empty name.
func parseEntryPoints(source string) (vertex, fragment string) {
	cleaned := stripComments(source)
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		vertex = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		fragment = m[1]
	}
	return vertex, fragment
}

// parseBindings extracts every @group/@binding declaration from source, ordered by group then binding.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []Binding: the declared bindings
func parseBindings(source string) []Binding {
	cleaned := stripComments(source)
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)

	bindings := make([]Binding, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.ParseUint(match[1], 10, 32)
		binding, _ := strconv.ParseUint(match[2], 10, 32)
		bindings = append(bindings, Binding{
			Group:   uint32(group),
			Binding: uint32(binding),
			Name:    strings.TrimSpace(match[4]),
			Kind:    classifyResource(strings.TrimSpace(match[3]), strings.TrimSpace(match[5])),
		})
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Group != bindings[j].Group {
			return bindings[i].Group < bindings[j].Group
		}
		return bindings[i].Binding < bindings[j].Binding
	})
	return bindings
}

// classifyResource maps a declaration's address space and type to the resource family it binds.
// Declarations with an address space are buffers; handle types are told apart by name.
func classifyResource(addressSpace, typeName string) gpu.BindingKind {
	if addressSpace != "" {
		return gpu.BindingKindBuffer
	}
	switch {
	case strings.HasPrefix(typeName, "sampler"):
		return gpu.BindingKindSampler
	case strings.HasPrefix(typeName, "texture_"):
		return gpu.BindingKindTexture
	default:
		return gpu.BindingKindNone
	}
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// Block comments may be nested.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
