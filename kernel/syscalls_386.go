//go:build linux && 386

package kernel

// Syscall numbers for the four ATLAS kernel patch primitives on 386,
// matching the original project's atlas/atlas.h.
const (
	sysAtlasNext   = 359
	sysAtlasSubmit = 360
	sysAtlasUpdate = 361
	sysAtlasRemove = 362
)
