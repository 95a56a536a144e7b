// Package texture wraps GPU textures with the view and sampler they are bound with, and
// decodes image files into upload-ready RGBA pixels.
package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/bits"
	"os"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultFormat is the format of sampled material textures. The mip blit pipeline renders into it.
const DefaultFormat = wgpu.TextureFormatRGBA8UnormSrgb

// Texture is a sampled GPU texture with its base view and sampler.
type Texture struct {
	Label         string
	Handle        gpu.Texture
	View          gpu.TextureView
	Sampler       gpu.Sampler
	Width         uint32
	Height        uint32
	MipLevelCount uint32
	Format        wgpu.TextureFormat
}

// SamplerOptions configures the sampler created alongside a texture. Zero fields fall back to
// linear filtering with repeat addressing.
type SamplerOptions struct {
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	MagFilter, MinFilter                     wgpu.FilterMode
	MipmapFilter                             wgpu.MipmapFilterMode
	LodMaxClamp                              float32
}

// MipLevelCount returns the length of a full mip chain for a width x height image:
// 1 + floor(log2(max(width, height))). Dimensions of zero are treated as one.
//
// Parameters:
//   - width: texture width in texels
//   - height: texture height in texels
//
// Returns:
//   - uint32: the number of mip levels, at least 1
func MipLevelCount(width, height uint32) uint32 {
	m := max(width, height, 1)
	return uint32(bits.Len32(m))
}

// FromImage uploads img as level 0 of a new texture allocated with a full mip chain. Levels above 0 are
// left undefined until a mipmap generator fills them. The texture is usable as a render attachment so
// the generator can blit into it.
//
// Parameters:
//   - ctx: the device context
//   - label: debug label for the texture and its view and sampler
//   - img: the source image
//   - opts: sampler configuration
//
// Returns:
//   - *Texture: the uploaded texture
//   - error: error if any GPU allocation fails
func FromImage(ctx *gpu.Context, label string, img image.Image, opts SamplerOptions) (*Texture, error) {
	rgba := ToRGBA(img)
	width := uint32(rgba.Rect.Dx())
	height := uint32(rgba.Rect.Dy())
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture %q: empty image", label)
	}
	levels := MipLevelCount(width, height)

	handle, err := ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Usage: wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageRenderAttachment,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Dimension:     wgpu.TextureDimension2D,
		Format:        DefaultFormat,
		MipLevelCount: levels,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", label, err)
	}

	ctx.Queue.WriteTexture(
		&gpu.ImageCopyTexture{
			Texture:  handle,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		rgba.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := handle.CreateView(nil)
	if err != nil {
		handle.Release()
		return nil, fmt.Errorf("texture %q view: %w", label, err)
	}

	sampler, err := ctx.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(opts.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(opts.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(opts.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(opts.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(opts.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(opts.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   0,
		LodMaxClamp:   common.Coalesce(opts.LodMaxClamp, 32.0),
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		handle.Release()
		return nil, fmt.Errorf("texture %q sampler: %w", label, err)
	}

	return &Texture{
		Label:         label,
		Handle:        handle,
		View:          view,
		Sampler:       sampler,
		Width:         width,
		Height:        height,
		MipLevelCount: levels,
		Format:        DefaultFormat,
	}, nil
}

// Release frees the sampler, view and texture.
func (t *Texture) Release() {
	if t.Sampler != nil {
		t.Sampler.Release()
		t.Sampler = nil
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Handle != nil {
		t.Handle.Release()
		t.Handle = nil
	}
}

// ToRGBA returns img as an *image.RGBA with its origin at (0, 0), converting if needed.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - *image.RGBA: tightly packed RGBA pixels
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}

// Decode reads an image in any registered format (PNG, JPEG, BMP, WebP) and converts it to RGBA.
//
// Parameters:
//   - r: the encoded image
//
// Returns:
//   - *image.RGBA: the decoded pixels
//   - error: error if decoding fails
func Decode(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return ToRGBA(img), nil
}

// Load decodes the image file at path.
//
// Parameters:
//   - path: path of the image file
//
// Returns:
//   - *image.RGBA: the decoded pixels
//   - error: error if the file cannot be opened or decoded
func Load(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	img, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("texture file %s: %w", path, err)
	}
	return img, nil
}
