//go:build linux && !amd64 && !386

package kernel

// No ATLAS kernel patch syscall numbers are known for this architecture;
// newLinuxEDF treats a negative sysAtlasNext as "unsupported" and falls
// back to the simulated backend.
const (
	sysAtlasNext   = -1
	sysAtlasSubmit = -1
	sysAtlasUpdate = -1
	sysAtlasRemove = -1
)
