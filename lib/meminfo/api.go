package meminfo

// MemInfo holds system memory statistics, in bytes.
type MemInfo struct {
	Available     uint64
	Buffers       uint64
	Cached        uint64
	Free          uint64
	HaveAvailable bool
	Total         uint64
}

func GetMemInfo() (*MemInfo, error) {
	return getMemInfo()
}
