package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/annel0/voxelnet/internal/wire"
)

// ErrIncomplete - в буфере ещё нет целого кадра. Это не ошибка соединения:
// нужно дочитать байты и повторить.
var ErrIncomplete = errors.New("incomplete frame")

// TrailingBytesError - данные кадра прочитаны не полностью.
// Например, маска ChunkData не совпадает с заголовком размера.
type TrailingBytesError struct {
	Type      PacketType
	Remaining int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("%s: %d trailing payload bytes", e.Type, e.Remaining)
}

// AppendFrame дописывает в dst кадр целиком: тип, заголовок размера (если есть) и данные
func AppendFrame(dst []byte, data PacketData) []byte {
	t := data.Type()
	dst = binary.LittleEndian.AppendUint16(dst, uint16(t))
	if header, ok := data.SizeHeader(); ok && t.SizeCanVary() {
		dst = append(dst, header)
	}
	return data.AppendPayload(dst)
}

// Encode возвращает кадр пакета
func Encode(data PacketData) []byte {
	return AppendFrame(nil, data)
}

// WriteFrame пишет кадр в буферизованный writer и возвращает его размер.
// Сброс буфера остаётся за вызывающим.
func WriteFrame(w *bufio.Writer, data PacketData) (int, error) {
	return w.Write(AppendFrame(w.AvailableBuffer(), data))
}

// FrameHeader читает тип и заголовок размера и возвращает полную длину кадра.
// ErrIncomplete, если заголовки ещё не получены.
func FrameHeader(buf []byte) (t PacketType, header uint8, frameLen int, err error) {
	if len(buf) < TypeHeaderSize {
		return 0, 0, 0, ErrIncomplete
	}
	t = PacketType(binary.LittleEndian.Uint16(buf))
	if !t.Known() {
		return t, 0, 0, &UnknownTypeError{Type: t}
	}

	off := TypeHeaderSize
	if t.SizeCanVary() {
		if len(buf) < off+SizeHeaderSize {
			return t, 0, 0, ErrIncomplete
		}
		header = buf[off]
		off += SizeHeaderSize
	}

	n, err := RequiredBufferSize(t, header)
	if err != nil {
		return t, header, 0, err
	}
	return t, header, off + n, nil
}

// TryDecode декодирует первый кадр из buf и возвращает число использованных байт.
// Если кадр ещё не получен целиком, возвращает ErrIncomplete и ничего не потребляет.
func TryDecode(buf []byte) (PacketData, int, error) {
	t, header, frameLen, err := FrameHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	if len(buf) < frameLen {
		return nil, 0, ErrIncomplete
	}

	payloadOff := TypeHeaderSize
	if t.SizeCanVary() {
		payloadOff += SizeHeaderSize
	}

	r := wire.NewReader(buf[payloadOff:frameLen])
	data, err := catalog[t].decode(r, header)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", t, err)
	}
	if r.Available() != 0 {
		return nil, 0, &TrailingBytesError{Type: t, Remaining: r.Available()}
	}
	return data, frameLen, nil
}
