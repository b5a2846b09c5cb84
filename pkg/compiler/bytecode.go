package compiler

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"time"
)

// Version is the bytecode format's (major, minor, patch) triple, written
// into every emitted header.
var Version = [3]uint16{0, 1, 0}

const magicTag = "ark"

const (
	sectionSym byte = 0x01
	sectionVal byte = 0x02
	sectionPlg byte = 0x03
	sectionCod byte = 0x04
)

const (
	valTagNumber byte = 0x01
	valTagString byte = 0x02
	valTagPage   byte = 0x03
)

// Bytecode serializes the compiler's tables and pages into the wire format
// described in spec §6: a fixed magic+version+timestamp header, then the
// SYM, VAL, PLG and COD sections in that order, terminated by a single
// zero byte. pushHeaderPhase1 below writes the magic/version/timestamp
// prefix; the push*Section writers follow it.
func (c *Compiler) Bytecode() ([]byte, error) {
	var buf bytes.Buffer
	c.pushHeaderPhase1(&buf)
	if err := c.pushSymbolSection(&buf); err != nil {
		return nil, err
	}
	if err := c.pushValueSection(&buf); err != nil {
		return nil, err
	}
	if err := c.pushPluginSection(&buf); err != nil {
		return nil, err
	}
	if err := c.pushCodeSection(&buf); err != nil {
		return nil, err
	}
	buf.WriteByte(0x00)
	return buf.Bytes(), nil
}

func (c *Compiler) pushHeaderPhase1(buf *bytes.Buffer) {
	buf.WriteString(magicTag)
	buf.WriteByte(0x00)
	for _, v := range Version {
		binary.Write(buf, binary.BigEndian, v)
	}
	binary.Write(buf, binary.BigEndian, uint64(time.Now().Unix()))
}

func (c *Compiler) pushSymbolSection(buf *bytes.Buffer) error {
	buf.WriteByte(sectionSym)
	binary.Write(buf, binary.BigEndian, uint16(len(c.symbols)))
	for _, s := range c.symbols {
		buf.WriteString(s)
		buf.WriteByte(0x00)
	}
	return nil
}

func (c *Compiler) pushValueSection(buf *bytes.Buffer) error {
	buf.WriteByte(sectionVal)
	binary.Write(buf, binary.BigEndian, uint16(len(c.values)))
	for _, v := range c.values {
		switch v.Kind {
		case VNumber:
			buf.WriteByte(valTagNumber)
			buf.WriteString(strconv.FormatFloat(v.Num, 'g', -1, 64))
			buf.WriteByte(0x00)
		case VString:
			buf.WriteByte(valTagString)
			buf.WriteString(v.Str)
			buf.WriteByte(0x00)
		case VPageRef:
			buf.WriteByte(valTagPage)
			binary.Write(buf, binary.BigEndian, uint16(v.Page))
		default:
			return &Error{Msg: "unknown value kind in constant table"}
		}
	}
	return nil
}

func (c *Compiler) pushPluginSection(buf *bytes.Buffer) error {
	buf.WriteByte(sectionPlg)
	binary.Write(buf, binary.BigEndian, uint16(len(c.plugins)))
	for _, p := range c.plugins {
		buf.WriteString(p)
		buf.WriteByte(0x00)
	}
	return nil
}

func (c *Compiler) pushCodeSection(buf *bytes.Buffer) error {
	for _, page := range c.pages {
		buf.WriteByte(sectionCod)
		binary.Write(buf, binary.BigEndian, uint32(len(page)*4))
		for _, ins := range page {
			enc := ins.encode()
			buf.Write(enc[:])
		}
	}
	return nil
}
