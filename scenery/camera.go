package scenery

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/xopoww/go-volcloud/app"
)

type Camera struct {
	Position mgl.Vec3
	Lookat   mgl.Vec3
	Up       mgl.Vec3
	// vertical, in degrees
	FOV float32
	// world units per frame
	Speed float32

	moveUp    bool
	moveDown  bool
	moveLeft  bool
	moveRight bool
	moveFor   bool
	moveBack  bool

	rotUp    bool
	rotDown  bool
	rotLeft  bool
	rotRight bool
	rotFor   bool // rotFor and rotBack are kind of misnomers as it is unclear what a "rotation forward" would be
	rotBack  bool // they're used just for similarity with moveFor and moveBack

	fovUp   bool
	fovDown bool
}

func NewCamera(position, lookat mgl.Vec3, fov, speed float32) *Camera {
	cam := &Camera{
		Position: position,
		Lookat:   lookat,
		Up:       mgl.Vec3{0.0, 1.0, 0.0},
		FOV:      fov,
		Speed:    speed,
	}
	cam.fixValues()
	return cam
}

// check if all fields of the struct are valid and fix if not
func (cam *Camera) fixValues() {
	forward := cam.forward()
	// remove Up's projection on forward so they're prependicular
	cam.Up = cam.Up.Sub(forward.Mul(forward.Dot(cam.Up))).Normalize()
}

// Camera.forward(), Camera.Up and Camera.right() create the right
// orthonormal basis associated with the camera
func (cam *Camera) forward() mgl.Vec3 {
	return cam.Lookat.Sub(cam.Position).Normalize()
}

func (cam *Camera) right() mgl.Vec3 {
	return cam.forward().Cross(cam.Up).Normalize()
}

func (cam *Camera) transformMatrix() mgl.Mat3 {
	return mgl.Mat3FromCols(cam.forward(), cam.Up, cam.right())
}

func (cam *Camera) Eye() mgl.Vec3 {
	return cam.Position
}

func (cam *Camera) ViewMatrix() mgl.Mat4 {
	return mgl.LookAtV(cam.Position, cam.Lookat, cam.Up)
}

func (cam *Camera) FieldOfView() float32 {
	return cam.FOV
}

const (
	cameraRotSpeed = 0.02
	fovSpeed       = 1.0

	minFOV = 5.0
	maxFOV = 120.0
)

func (cam *Camera) Update() {
	var dX, dY, dZ float32

	if cam.moveUp {
		dY += cam.Speed
	}
	if cam.moveDown {
		dY -= cam.Speed
	}
	if cam.moveRight {
		dZ += cam.Speed
	}
	if cam.moveLeft {
		dZ -= cam.Speed
	}
	if cam.moveFor {
		dX += cam.Speed
	}
	if cam.moveBack {
		dX -= cam.Speed
	}

	deltaVec := cam.forward().Mul(dX).Add(cam.right().Mul(dZ)).Add(cam.Up.Mul(dY))

	if deltaVec.Len() > 0.0 {
		cam.Position = cam.Position.Add(deltaVec)
		cam.Lookat = cam.Lookat.Add(deltaVec)
	}

	var dPhiY, dPhiZ, dPhiX float32

	if cam.rotRight {
		dPhiY += cameraRotSpeed
	}
	if cam.rotLeft {
		dPhiY -= cameraRotSpeed
	}
	if cam.rotUp {
		dPhiZ -= cameraRotSpeed
	}
	if cam.rotDown {
		dPhiZ += cameraRotSpeed
	}
	if cam.rotFor {
		dPhiX -= cameraRotSpeed
	}
	if cam.rotBack {
		dPhiX += cameraRotSpeed
	}

	A := mgl.Ident3()
	if dPhiY != 0.0 {
		A = A.Mul3(mgl.Rotate3DY(dPhiY))
	}
	if dPhiZ != 0.0 {
		A = A.Mul3(mgl.Rotate3DZ(dPhiZ))
	}
	if dPhiX != 0.0 {
		A = A.Mul3(mgl.Rotate3DX(dPhiX))
	}
	if dPhiX != 0.0 || dPhiY != 0.0 || dPhiZ != 0.0 {
		T := cam.transformMatrix()
		M := T.Mul3(A).Mul3(T.Inv()).Transpose()

		newForward := M.Mul3x1(cam.Lookat.Sub(cam.Position))
		cam.Lookat = cam.Position.Add(newForward)
		cam.Up = M.Mul3x1(cam.Up)
		cam.fixValues()
	}

	var dFOV float32
	if cam.fovUp {
		dFOV += fovSpeed
	}
	if cam.fovDown {
		dFOV -= fovSpeed
	}
	if minFOV < cam.FOV+dFOV && cam.FOV+dFOV < maxFOV {
		cam.FOV += dFOV
	}
}

func (cam *Camera) AttachToEventHandler(eh *app.EventHandler) {
	eh.AddOption(glfw.KeyW, &cam.moveFor, app.Hold)
	eh.AddOption(glfw.KeyS, &cam.moveBack, app.Hold)
	eh.AddOption(glfw.KeyD, &cam.moveRight, app.Hold)
	eh.AddOption(glfw.KeyA, &cam.moveLeft, app.Hold)
	eh.AddOption(glfw.KeySpace, &cam.moveUp, app.Hold)
	eh.AddOption(glfw.KeyLeftShift, &cam.moveDown, app.Hold)

	eh.AddOption(glfw.KeyKP8, &cam.rotUp, app.Hold)
	eh.AddOption(glfw.KeyKP2, &cam.rotDown, app.Hold)
	eh.AddOption(glfw.KeyKP6, &cam.rotRight, app.Hold)
	eh.AddOption(glfw.KeyKP4, &cam.rotLeft, app.Hold)
	eh.AddOption(glfw.KeyKP9, &cam.rotFor, app.Hold)
	eh.AddOption(glfw.KeyKP7, &cam.rotBack, app.Hold)

	eh.AddOption(glfw.KeyV, &cam.fovUp, app.Hold)
	eh.AddOption(glfw.KeyC, &cam.fovDown, app.Hold)
}
