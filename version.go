// Copyright ©2019 The Gonum Authors. All rights reserved.
// Copyright ©2024 The PIM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pim

import (
	"runtime"
	"runtime/debug"
)

const modulePath = "github.com/LynnColeArt/pim"

// BuildInfo identifies the runtime build a binary links against
type BuildInfo struct {
	Module    string // module version, "(devel)" in a local build
	Sum       string // module checksum, empty when unknown
	GoVersion string
}

// Version reports the module version. Module and Sum are only known in
// binaries built with module support; otherwise Module is "(devel)".
func Version() BuildInfo {
	info := BuildInfo{Module: "(devel)", GoVersion: runtime.Version()}
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, m := range append([]*debug.Module{&b.Main}, b.Deps...) {
		if m.Path != modulePath {
			continue
		}
		if m.Replace != nil {
			m = m.Replace
		}
		if m.Version != "" {
			info.Module = m.Version
		}
		info.Sum = m.Sum
		break
	}
	return info
}

// String formats the build as "pim <version> (<go version>)"
func (b BuildInfo) String() string {
	return "pim " + b.Module + " (" + b.GoVersion + ")"
}
