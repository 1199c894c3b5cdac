// Package wire содержит низкоуровневое чтение двоичных полей протокола.
// Порядок байт задаётся явно для каждого поля, память хоста не используется.
package wire

import (
	"encoding/binary"
	"fmt"
)

// NotEnoughDataError сообщает, что в буфере меньше байт, чем требует операция чтения.
type NotEnoughDataError struct {
	Needed    int
	Available int
}

func (e *NotEnoughDataError) Error() string {
	return fmt.Sprintf("not enough data: need %d bytes, %d available", e.Needed, e.Available)
}

// Reader последовательно читает поля из готового буфера.
type Reader struct {
	data []byte
	off  int
}

// NewReader создаёт Reader поверх data. Буфер не копируется.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Available возвращает количество непрочитанных байт
func (r *Reader) Available() int {
	return len(r.data) - r.off
}

// Offset возвращает количество уже прочитанных байт
func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) ensure(n int) error {
	if r.Available() < n {
		return &NotEnoughDataError{Needed: n, Available: r.Available()}
	}
	return nil
}

// Bytes возвращает следующие n байт без копирования
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.ensure(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) Uint8() (uint8, error) {
	if err := r.ensure(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// Uint16 читает little-endian u16
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint64 читает little-endian u64
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Int24BE читает 24-битное знаковое число, старший байт первым, с расширением знака.
func (r *Reader) Int24BE() (int32, error) {
	b, err := r.Bytes(3)
	if err != nil {
		return 0, err
	}
	v := int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])
	return v << 8 >> 8, nil
}

// AppendInt24BE дописывает младшие 24 бита v, старший байт первым.
func AppendInt24BE(dst []byte, v int32) []byte {
	return append(dst, byte(v>>16), byte(v>>8), byte(v))
}
