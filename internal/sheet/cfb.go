package sheet

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

// Compound file (OLE2) layout as read by the BIFF reader: fixed 512-byte
// sectors, 64-byte mini sectors and at most 109 FAT sectors in the header.
const (
	cfbSectorSize   = 512
	cfbHeaderMSAT   = 109
	cfbEndOfChain   = 0xFFFFFFFE
	cfbDirEntrySize = 128
)

var errCorruptCompoundFile = errors.New("corrupt compound file")

type compoundFile struct {
	data []byte
	fat  []uint32
}

// sector returns sector sid the way the reader addresses it: positions
// wrap at 32 bits and bytes past the end read as zero.
func (cf *compoundFile) sector(sid uint32) []byte {
	buf := make([]byte, cfbSectorSize)
	pos := uint32(cfbSectorSize) + sid*cfbSectorSize
	if int64(pos) < int64(len(cf.data)) {
		copy(buf, cf.data[pos:])
	}
	return buf
}

func (cf *compoundFile) stream(sids []uint32) []byte {
	out := make([]byte, 0, len(sids)*cfbSectorSize)
	for _, sid := range sids {
		out = append(out, cf.sector(sid)...)
	}
	return out
}

func sectorValues(sec []byte, n int) []uint32 {
	vals := make([]uint32, n)
	for i := range vals {
		vals[i] = binary.LittleEndian.Uint32(sec[i*4:])
	}
	return vals
}

// walkChain follows a sector chain through table. Ids outside the table
// and cycles are errors.
func walkChain(table []uint32, start uint32) ([]uint32, error) {
	var sids []uint32
	for sid := start; sid != cfbEndOfChain; sid = table[sid] {
		if uint64(sid) >= uint64(len(table)) || len(sids) >= len(table) {
			return nil, errCorruptCompoundFile
		}
		sids = append(sids, sid)
	}
	return sids, nil
}

// checkCompoundFile verifies that every chain the BIFF reader follows to
// reach the workbook stream terminates inside its tables. The reader
// exits the process on a bad sector id and loops forever on a cycle.
func checkCompoundFile(data []byte) error {
	if len(data) < cfbSectorSize {
		return errCorruptCompoundFile
	}
	le := binary.LittleEndian
	h := data[:cfbSectorSize]
	if le.Uint32(h[0:]) != 0xE011CFD0 || le.Uint32(h[4:]) != 0xE11AB1A1 || le.Uint16(h[28:]) != 0xFFFE {
		return errors.New("not an xls file")
	}
	if le.Uint16(h[30:]) != 9 || le.Uint16(h[32:]) != 6 {
		return errors.New("unsupported xls sector size")
	}

	var (
		numFAT    = le.Uint32(h[44:])
		dirStart  = le.Uint32(h[48:])
		cutoff    = le.Uint32(h[56:])
		miniStart = le.Uint32(h[60:])
		numMini   = le.Uint32(h[64:])
		difStart  = le.Uint32(h[68:])
		maxSteps  = len(data)/cfbSectorSize + 1
	)

	cf := &compoundFile{data: data}
	for i := uint32(0); i < min(numFAT, cfbHeaderMSAT); i++ {
		cf.fat = append(cf.fat, sectorValues(cf.sector(le.Uint32(h[76+4*i:])), 128)...)
	}
	for sid, steps := difStart, 0; sid != cfbEndOfChain; steps++ {
		if steps > maxSteps {
			return errCorruptCompoundFile
		}
		sec := cf.sector(sid)
		for _, fatSid := range sectorValues(sec, 127) {
			cf.fat = append(cf.fat, sectorValues(cf.sector(fatSid), 128)...)
		}
		sid = le.Uint32(sec[508:])
	}

	dirSids, err := walkChain(cf.fat, dirStart)
	if err != nil {
		return err
	}
	var book, root []byte
	dir := cf.stream(dirSids)
	for off := 0; off+cfbDirEntrySize <= len(dir); off += cfbDirEntrySize {
		entry := dir[off : off+cfbDirEntrySize]
		if entry[66] == 0 {
			break
		}
		nameLen := le.Uint16(entry[64:])
		if nameLen < 2 || nameLen > 64 {
			return errCorruptCompoundFile
		}
		units := make([]uint16, nameLen/2-1)
		for i := range units {
			units[i] = le.Uint16(entry[2*i:])
		}
		switch string(utf16.Decode(units)) {
		case "Workbook", "Book":
			book = entry
		case "Root Entry":
			root = entry
		}
	}
	if book == nil {
		return errors.New("no workbook stream found")
	}

	start, size := le.Uint32(book[116:]), le.Uint32(book[120:])
	if size >= cutoff {
		_, err := walkChain(cf.fat, start)
		return err
	}

	// small workbooks live in the mini stream held by the root entry
	if root == nil {
		return errCorruptCompoundFile
	}
	if _, err := walkChain(cf.fat, le.Uint32(root[116:])); err != nil {
		return err
	}
	if int(numMini) > maxSteps {
		return errCorruptCompoundFile
	}
	var miniFAT []uint32
	for i := uint32(0); i < numMini; i++ {
		if miniStart != cfbEndOfChain {
			miniFAT = append(miniFAT, sectorValues(cf.sector(miniStart), 127)...)
		}
	}
	_, err = walkChain(miniFAT, start)
	return err
}
