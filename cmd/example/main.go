package main

import (
	"fmt"
	"os"

	"github.com/LynnColeArt/pim"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("PIM Runtime Examples")
		fmt.Println("====================")
		fmt.Println()
		fmt.Println("Usage: go run ./cmd/example <example>")
		fmt.Println()
		fmt.Println("Available examples:")
		fmt.Println("  info  - Emulated device and host features")
		fmt.Println("  gemv  - Fully connected layer (Gemv + bias + relu)")
		fmt.Println("  copy  - 3D rectangular copy into a PIM buffer")
		return
	}

	if err := pim.Initialize(pim.RuntimeHIP, pim.FP16); err != nil {
		fail(err)
	}
	defer pim.Deinitialize()

	var err error
	switch os.Args[1] {
	case "info":
		info()
	case "gemv":
		err = fullyConnected()
	case "copy":
		err = rectCopy()
	default:
		fmt.Printf("Unknown example: %s\n", os.Args[1])
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error (%s): %v\n", pim.StatusOf(err), err)
	os.Exit(1)
}

func info() {
	dev := pim.GetDevice()
	fmt.Printf("Device %d: %s\n", dev.ID, dev.Name)
	fmt.Printf("Devices: %d\n", pim.GetDeviceCount())
	fmt.Printf("Memory limit: %d MiB\n", dev.MemLimit>>20)
	fmt.Printf("Host: %s\n", dev.Host)
	fmt.Printf("Build: %s\n", pim.Version())
}

// fullyConnected runs out = relu(W·x + b) for a 4x3 weight matrix.
func fullyConnected() error {
	const k, m = 3, 4
	vec, err := pim.CreateBo(k, 1, 1, 1, pim.FP16, pim.MemPIM, nil)
	if err != nil {
		return err
	}
	defer pim.DestroyBo(vec)
	mat, err := pim.CreateBo(k, m, 1, 1, pim.FP16, pim.MemPIM, nil)
	if err != nil {
		return err
	}
	defer pim.DestroyBo(mat)
	bias, err := pim.CreateBo(m, 1, 1, 1, pim.FP16, pim.MemPIM, nil)
	if err != nil {
		return err
	}
	defer pim.DestroyBo(bias)
	out, err := pim.CreateBo(m, 1, 1, 1, pim.FP16, pim.MemPIM, nil)
	if err != nil {
		return err
	}
	defer pim.DestroyBo(out)

	vec.Half().CopyFromFloat32([]float32{1, 2, 3})
	mat.Half().CopyFromFloat32([]float32{
		1, 0, 0,
		0, -1, 0,
		0.5, 0.5, 0.5,
		-1, -1, 1,
	})
	bias.Half().CopyFromFloat32([]float32{0.25, 1, -3, 0})

	if err := pim.GemvAddBias(out, vec, mat, bias, true); err != nil {
		return err
	}
	fmt.Printf("x   = %v\n", vec.Half().Float32s())
	fmt.Printf("out = %v\n", out.Half().Float32s())
	return nil
}

// rectCopy copies a 2x2 tile from a host image into the middle of a PIM buffer.
func rectCopy() error {
	const w, h = 6, 4
	host := make([]byte, w*h*2)
	img := pim.NewHalfSlice(host)
	for i := 0; i < img.Len(); i++ {
		img.SetFloat32(i, float32(i))
	}

	dst, err := pim.CreateBo(4, 4, 1, 1, pim.FP16, pim.MemPIM, nil)
	if err != nil {
		return err
	}
	defer pim.DestroyBo(dst)
	dst.Half().Fill(pim.HalfFromFloat32(0))

	err = pim.CopyRect3D(&pim.Copy3D{
		SrcXInBytes: 2 * 2, SrcY: 1,
		SrcMemType: pim.MemHost, SrcPtr: host, SrcPitch: w * 2, SrcHeight: h,
		DstXInBytes: 1 * 2, DstY: 1,
		DstMemType: pim.MemPIM, DstBo: dst,
		WidthInBytes: 2 * 2, Height: 2, Depth: 1,
	})
	if err != nil {
		return err
	}

	vals := dst.Half().Float32s()
	for row := 0; row < 4; row++ {
		fmt.Println(vals[row*4 : row*4+4])
	}
	return nil
}
