package glutils

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/stretchr/testify/assert"

	"github.com/xopoww/go-volcloud/gpu"
)

func TestFlipImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 0xff})
		}
	}

	dst := FlipImage(src)

	assert.Equal(t, src.Bounds(), dst.Bounds())
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, color.RGBA{R: uint8(x), G: uint8(2 - y), A: 0xff}, dst.RGBAAt(x, y))
		}
	}
}

func TestFlipImageOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 10, 6, 12))
	src.Set(5, 10, color.RGBA{R: 1, A: 0xff})
	src.Set(5, 11, color.RGBA{R: 2, A: 0xff})

	dst := FlipImage(src)

	assert.Equal(t, uint8(2), dst.RGBAAt(5, 10).R)
	assert.Equal(t, uint8(1), dst.RGBAAt(5, 11).R)
}

func TestInternalFormat(t *testing.T) {
	_, err := internalFormat(gpu.RGBA8)
	assert.NoError(t, err)
	_, err = internalFormat(gpu.RGBA32F)
	assert.NoError(t, err)
	_, err = internalFormat(gpu.Format(42))
	assert.EqualError(t, err, "unsupported texture format Format(42)")
}

func TestActiveUniform(t *testing.T) {
	loc, err := activeUniform("tex", 3)
	assert.NoError(t, err)
	assert.Equal(t, int32(3), loc)

	loc, err = activeUniform("tex", 0)
	assert.NoError(t, err)
	assert.Equal(t, int32(0), loc)

	_, err = activeUniform("tex", -1)
	assert.EqualError(t, err, "uniform tex not active")
}

func TestImageBarrierBits(t *testing.T) {
	for _, bit := range []uint32{
		gl.SHADER_IMAGE_ACCESS_BARRIER_BIT,
		gl.TEXTURE_FETCH_BARRIER_BIT,
		gl.TEXTURE_UPDATE_BARRIER_BIT,
	} {
		assert.NotZero(t, uint32(imageBarrierBits)&bit, "bit 0x%x", bit)
	}
}
