// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "bytes"

// asBool gets the boolean value of the byte array. Bitcoin's interpreter
// treats a stack item as true unless it is empty or consists entirely of
// zero bytes, except that the very last byte may carry the sign bit
// (0x80) without making the value true — i.e. "negative zero" is still
// falsy. This is distinct from comparing the item against the canonical
// encoding of zero.
func asBool(t []byte) bool {
	for i := range t {
		if t[i] != 0 {
			if i == len(t)-1 && t[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// fromBool converts a boolean into the appropriate byte array.
func fromBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return nil
}

// stack represents a stack of immutable objects to be used with the
// bitcoin scripting language. Both the main execution stack and the alt
// stack are modeled with this type.
type stack struct {
	stk           [][]byte
	maxStackDepth int
}

// removeAt returns the item at idx (0 is top of stack, 1 is one below
// that, and so on) without removing it from the array it was in.
func (s *stack) removeAt(idx int) [][]byte {
	index := len(s.stk) - idx - 1
	slice := make([][]byte, len(s.stk)-1)
	copy(slice, s.stk[:index])
	copy(slice[index:], s.stk[index+1:])
	return slice
}

func (s *stack) checkOverflow(addItems int) error {
	if len(s.stk)+addItems > s.maxStackDepth {
		return scriptError(ErrStackOverflow, "combined stack size %d > max allowed %d", len(s.stk)+addItems, s.maxStackDepth)
	}
	return nil
}

// Depth returns the number of items on the stack.
func (s *stack) Depth() int {
	return len(s.stk)
}

// PushByteArray pushes the given byte array onto the top of the stack.
func (s *stack) PushByteArray(so []byte) error {
	if err := s.checkOverflow(1); err != nil {
		return err
	}
	s.stk = append(s.stk, so)
	return nil
}

// PushInt converts the provided scriptNum to a suitable byte array and
// pushes it onto the top of the stack.
func (s *stack) PushInt(val scriptNum) error {
	return s.PushByteArray(val.Bytes())
}

// PushBool converts the provided boolean to a suitable byte array and
// pushes it onto the top of the stack.
func (s *stack) PushBool(val bool) error {
	return s.PushByteArray(fromBool(val))
}

// PopByteArray pops the value off the top of the stack and returns it.
func (s *stack) PopByteArray() ([]byte, error) {
	return s.nipN(0)
}

// PopInt pops the value off the top of the stack, converts it into a
// scriptNum, and returns it. requireMinimal enforces BIP62 rule 4 on the
// popped encoding and scriptNumBytes bounds the number of operand bytes
// per the 4/5-byte arithmetic rule.
func (s *stack) PopInt(requireMinimal bool, scriptNumBytes int) (scriptNum, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, requireMinimal, scriptNumBytes)
}

// PopBool pops the value off the top of the stack, converts it into a
// bool, and returns it.
func (s *stack) PopBool() (bool, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

// PeekByteArray returns the Nth item on the stack without removing it.
func (s *stack) PeekByteArray(idx int) ([]byte, error) {
	sz := len(s.stk)
	if idx < 0 || idx >= sz {
		return nil, scriptError(ErrInvalidStackOperation, "index %d out of range for stack of size %d", idx, sz)
	}
	return s.stk[sz-idx-1], nil
}

// PeekInt returns the Nth item on the stack as a script num without
// removing it.
func (s *stack) PeekInt(idx int, requireMinimal bool, scriptNumBytes int) (scriptNum, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, requireMinimal, scriptNumBytes)
}

// PeekBool returns the Nth item on the stack as a bool without removing
// it.
func (s *stack) PeekBool(idx int) (bool, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

// nipN removes the Nth object on the stack and returns it.
func (s *stack) nipN(idx int) ([]byte, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return nil, err
	}
	s.stk = s.removeAt(idx)
	return so, nil
}

// NipN removes the Nth object on the stack. It does not return the
// removed item, unlike nipN.
func (s *stack) NipN(idx int) error {
	_, err := s.nipN(idx)
	return err
}

// Tuck copies the item at the top of the stack and inserts it before the
// 2nd to top item.
func (s *stack) Tuck() error {
	so2, err := s.PopByteArray()
	if err != nil {
		return err
	}
	so1, err := s.PopByteArray()
	if err != nil {
		return err
	}
	if err := s.checkOverflow(2); err != nil {
		return err
	}
	s.stk = append(s.stk, so2, so1, so2)
	return nil
}

// DropN drops the top N items on the stack.
func (s *stack) DropN(n int) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "attempt to drop %d items from stack", n)
	}
	for ; n > 0; n-- {
		if _, err := s.PopByteArray(); err != nil {
			return err
		}
	}
	return nil
}

// DupN duplicates the top N items on the stack.
func (s *stack) DupN(n int) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "attempt to dup %d items from stack", n)
	}
	for i := n; i > 0; i-- {
		so, err := s.PeekByteArray(n - 1)
		if err != nil {
			return err
		}
		if err := s.PushByteArray(so); err != nil {
			return err
		}
	}
	return nil
}

// RotN rotates the top 3N items on the stack to the left N times.
func (s *stack) RotN(n int) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "attempt to rotate %d items from stack", n)
	}
	entry := 3*n - 1
	for i := n; i > 0; i-- {
		so, err := s.nipN(entry)
		if err != nil {
			return err
		}
		if err := s.PushByteArray(so); err != nil {
			return err
		}
	}
	return nil
}

// SwapN swaps the top N items on the stack with those below them.
func (s *stack) SwapN(n int) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "attempt to swap %d items from stack", n)
	}
	entry := 2*n - 1
	for i := n; i > 0; i-- {
		so, err := s.nipN(entry)
		if err != nil {
			return err
		}
		if err := s.PushByteArray(so); err != nil {
			return err
		}
	}
	return nil
}

// OverN copies N items N items back to the top of the stack.
func (s *stack) OverN(n int) error {
	if n < 1 {
		return scriptError(ErrInvalidStackOperation, "attempt to perform OVER on %d items from stack", n)
	}
	entry := 2*n - 1
	for ; n > 0; n-- {
		so, err := s.PeekByteArray(entry)
		if err != nil {
			return err
		}
		if err := s.PushByteArray(so); err != nil {
			return err
		}
	}
	return nil
}

// PickN copies the item N items back in the stack to the top.
func (s *stack) PickN(n int) error {
	so, err := s.PeekByteArray(n)
	if err != nil {
		return err
	}
	return s.PushByteArray(so)
}

// RollN moves the item N items back in the stack to the top.
func (s *stack) RollN(n int) error {
	so, err := s.nipN(n)
	if err != nil {
		return err
	}
	return s.PushByteArray(so)
}

// String returns the stack in a human-readable format, top of stack
// first, used only for debugging/disassembly, never for anything
// consensus-relevant.
func (s *stack) String() string {
	var b bytes.Buffer
	for i := len(s.stk) - 1; i >= 0; i-- {
		b.WriteString(hexDump(s.stk[i]))
		if i > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func hexDump(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}
