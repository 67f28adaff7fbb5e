package linux

// Inode mode bits, as the kernel defines them.
const (
	S_IFMT  = 0o170000
	S_IFDIR = 0o040000
	S_IFREG = 0o100000
)

func IsDir(mode uint64) bool { return mode&S_IFMT == S_IFDIR }

func IsReg(mode uint64) bool { return mode&S_IFMT == S_IFREG }
