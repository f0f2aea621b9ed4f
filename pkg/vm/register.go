package vm

// RegisterFile holds the two machine registers. Everything else lives in
// memory.
type RegisterFile struct {
	IP           int64 // instruction pointer
	RelativeBase int64 // base for relative-mode operands
}

// Reset clears all registers.
func (rf *RegisterFile) Reset() {
	rf.IP = 0
	rf.RelativeBase = 0
}
