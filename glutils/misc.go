package glutils

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.6-core/gl"
)

func CheckError() error {
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return fmt.Errorf("OpenGL error 0x%04x", errCode)
	}
	return nil
}

// Initialize and return a vertex array from the points provided
func MakeVao(points []float32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(points), gl.Ptr(points), gl.STATIC_DRAW)

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, nil)
	return vao
}

// Convenience wrapper for gl.GetUniformLocation
func GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// Same as GetUniformLocation, but fails if the uniform is not active
func UniformLocation(program uint32, name string) (int32, error) {
	return activeUniform(name, GetUniformLocation(program, name))
}

func activeUniform(name string, location int32) (int32, error) {
	if location == -1 {
		return -1, fmt.Errorf("uniform %s not active", name)
	}
	return location, nil
}

// Copy level 0 of a 2D texture to an image, converting to 8 bits per channel
func GetImage(texture uint32, width, height int) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := CheckError(); err != nil {
		return nil, err
	}
	return img, nil
}

// Create a copy of src reflected along the horizontal axis (GL stores rows
// bottom to top)
func FlipImage(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			dst.Set(x, y, src.At(x, b.Max.Y-1-(y-b.Min.Y)))
		}
	}
	return dst
}
