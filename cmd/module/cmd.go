package main

import (
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/components/switch"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/resource"

	"github.com/erh/rgbdgrasp/rgbd"
)

func main() {
	module.ModularMain(
		resource.APIModel{API: camera.API, Model: rgbd.FuseModel},
		resource.APIModel{API: toggleswitch.API, Model: rgbd.CapturePositionModel},
	)
}
