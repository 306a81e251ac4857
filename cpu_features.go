package pim

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// HostFeatures tracks host instruction set extensions relevant to fp16
// emulation. Kernels always run the portable scalar path so results do not
// depend on them; they are reported for diagnostics.
type HostFeatures struct {
	Arch       string
	NumCPU     int
	HasAVX2    bool
	HasFMA     bool
	HasAVX512F bool
	HasFP16    bool // native half-precision arithmetic (arm64 FPHP+ASIMDHP)
}

// Global host feature detection
var hostFeatures HostFeatures

func init() {
	detectHostFeatures()
}

// detectHostFeatures populates the global hostFeatures struct
func detectHostFeatures() {
	hostFeatures = HostFeatures{
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		HasAVX2:    cpu.X86.HasAVX2,
		HasFMA:     cpu.X86.HasFMA,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFP16:    cpu.ARM64.HasFPHP && cpu.ARM64.HasASIMDHP,
	}
}

// String returns a string describing available host features
func (f HostFeatures) String() string {
	features := []string{}
	if f.HasAVX2 {
		features = append(features, "AVX2")
	}
	if f.HasFMA {
		features = append(features, "FMA")
	}
	if f.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if f.HasFP16 {
		features = append(features, "FP16")
	}
	if len(features) == 0 {
		return f.Arch + ": no SIMD extensions detected"
	}
	return f.Arch + ": " + strings.Join(features, ", ")
}
