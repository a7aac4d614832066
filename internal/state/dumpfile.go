package state

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// DumpFile describes the fixed binary layout the restore program writes
// at the top of x-memory before jumping back to the debugger's
// breakpoint, and that Extract parses back into a MachineState.
//
// Layout (all little-endian, packed, offsets relative to dump base
// xmemstart+xmemlen-dumpfile_reserve):
//
//	tmpregstore   3 * xlenb
//	estate        3 * xlenb   (lastpc, #exceptions, mstatus & 0x6600)
//	[if F/D]      fstate (1 * xlenb: fcsr) + f0..f31 (32 * flenb, aligned up to xlenb)
//	[if V]        vstate (7 * xlenb: vtype,vl,vlenb,vstart,vxrm,vxsat,vcsr) + v0..v31 (32 * vlenb)
type DumpFile struct {
	XLenBytes int
	FLenBytes int // 0 when F/D absent
	VLenBytes int // 0 when V absent
}

// Base returns the dump's start address: the top reserve bytes of
// x-memory.
func (d DumpFile) Base(xmemstart, xmemlen, reserve uint64) uint64 {
	return xmemstart + xmemlen - reserve
}

// Size computes the total reserved region size for this configuration.
func (d DumpFile) Size() int {
	size := 3*d.XLenBytes + 3*d.XLenBytes // tmpregstore + estate
	if d.FLenBytes > 0 {
		size += d.XLenBytes + alignUp(32*d.FLenBytes, d.XLenBytes)
	}
	if d.VLenBytes > 0 {
		size += 7*d.XLenBytes + 32*d.VLenBytes
	}
	return size
}

func alignUp(n, align int) int {
	if align == 0 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + (align - rem)
}

// Extract decodes a raw dump buffer (the bytes read back from the
// tracee's x-memory at the dump base) into a MachineState, hashing the
// supplied x-memory and d-memory content windows with SHA-1 for the
// terminal comparison's memory-equality check.
func (d DumpFile) Extract(buf []byte, xmem, dmem []byte) (*MachineState, error) {
	minSize := 6 * d.XLenBytes
	if len(buf) < minSize {
		return nil, fmt.Errorf("dump buffer too small: got %d bytes, need at least %d", len(buf), minSize)
	}

	m := New(d.FLenBytes*8, d.VLenBytes*8)
	off := 0

	// tmpregstore: three scratch GPRs saved/restored by the dump
	// routine itself; not part of architectural state, skipped.
	off += 3 * d.XLenBytes

	m.LastPC = d.readXLen(buf, off)
	off += d.XLenBytes
	m.Exceptions = d.readXLen(buf, off)
	off += d.XLenBytes
	m.Mstatus = d.readXLen(buf, off) & mstatusMask
	off += d.XLenBytes

	if d.FLenBytes > 0 {
		m.F.FCSR = uint32(d.readXLen(buf, off))
		off += d.XLenBytes
		for i := 0; i < 32; i++ {
			m.F.F[i] = append([]byte(nil), buf[off:off+d.FLenBytes]...)
			off += d.FLenBytes
		}
		off = alignUp(off, d.XLenBytes)
	}

	if d.VLenBytes > 0 {
		fields := []*uint64{&m.V.VType, &m.V.VL, &m.V.VLenb, &m.V.VStart, &m.V.VXRM, &m.V.VXSAT, &m.V.VCSR}
		for _, f := range fields {
			*f = d.readXLen(buf, off)
			off += d.XLenBytes
		}
		for i := 0; i < 32; i++ {
			m.V.V[i] = append([]byte(nil), buf[off:off+d.VLenBytes]...)
			off += d.VLenBytes
		}
	}

	m.XMemHash = hashBytes(xmem)
	m.DMemHash = hashBytes(dmem)
	return m, nil
}

func (d DumpFile) readXLen(buf []byte, off int) uint64 {
	if d.XLenBytes == 4 {
		return uint64(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	return binary.LittleEndian.Uint64(buf[off : off+8])
}

func hashBytes(b []byte) string {
	return HashBytes(b)
}

// HashBytes is the SHA-1 hex digest used for xmem/dmem content hashing
// in both DumpFile.Extract and any adapter that captures memory
// outside a DumpFile (e.g. a GDB-driven raw memory dump).
func HashBytes(b []byte) string {
	sum := sha1.Sum(b)
	return fmt.Sprintf("%x", sum)
}
