package opcode

import (
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

//nolint:funlen // test tables can be long
func TestDecode(t *testing.T) {
	tests := []struct {
		word     uint16
		expected Op
	}{
		{0x00E0, ClearScreen},
		{0x00EE, Return},
		{0x1234, Jump},
		{0x2ABC, Call},
		{0x3A12, SkipEqualByte},
		{0x4B34, SkipNotEqualByte},
		{0x5120, SkipEqualRegister},
		{0x0AE0, ClearScreen},
		{0x0FEE, Return},
		{0x5127, SkipEqualRegister},
		{0x912F, SkipNotEqualRegister},
		{0x6C42, LoadByte},
		{0x7D01, AddByte},
		{0x8120, LoadRegister},
		{0x8121, Or},
		{0x8122, And},
		{0x8123, Xor},
		{0x8124, AddRegister},
		{0x8125, Sub},
		{0x8126, ShiftRight},
		{0x8127, SubNegated},
		{0x812E, ShiftLeft},
		{0x9120, SkipNotEqualRegister},
		{0xA2F0, LoadIndex},
		{0xB300, JumpOffset},
		{0xC7FF, Random},
		{0xD125, Draw},
		{0xE39E, SkipKeyPressed},
		{0xE3A1, SkipKeyNotPressed},
		{0xF407, LoadDelayTimer},
		{0xF40A, WaitKeyRelease},
		{0xF415, SetDelayTimer},
		{0xF418, SetSoundTimer},
		{0xF41E, AddIndex},
		{0xF429, LoadFontAddress},
		{0xF433, StoreBCD},
		{0xF455, StoreRegisters},
		{0xF465, LoadRegisters},
	}

	assert.Equal(t, Count+4, len(tests))

	seen := map[Op]bool{}
	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			ins := Decode(tt.word)
			assert.Equal(t, tt.word, ins.Word)
			assert.Equal(t, tt.expected, ins.Op)
			assert.True(t, ins.Op.Valid())
		})
		seen[tt.expected] = true
	}
	assert.Equal(t, Count, len(seen))
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		word uint16
	}{
		{"machine code call", 0x0123},
		{"zero word", 0x0000},
		{"superchip scroll", 0x00C1},
		{"superchip exit", 0x00FD},
		{"arithmetic 8XY8", 0x8128},
		{"arithmetic 8XYF", 0x812F},
		{"key group", 0xE19F},
		{"misc group", 0xF100},
		{"misc FX30", 0xF130},
		{"misc FX75", 0xF175},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := Decode(tt.word)
			assert.Equal(t, Invalid, ins.Op)
			assert.False(t, ins.Op.Valid())
		})
	}
}

func TestInstructionOperands(t *testing.T) {
	ins := Decode(0xD7A5)

	assert.Equal(t, uint16(0x7A5), ins.NNN())
	assert.Equal(t, byte(0xA5), ins.NN())
	assert.Equal(t, byte(0x5), ins.N())
	assert.Equal(t, uint8(0x7), ins.X())
	assert.Equal(t, uint8(0xA), ins.Y())
}

func TestOps(t *testing.T) {
	ops := Ops()

	assert.Equal(t, Count, len(ops))
	assert.Equal(t, 34, Count)
	assert.Equal(t, ClearScreen, ops[0])
	assert.Equal(t, LoadRegisters, ops[len(ops)-1])

	for _, op := range ops {
		assert.True(t, op.Valid())
		assert.NotEmpty(t, op.String())
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "8XY4", AddRegister.String())
	assert.Equal(t, "FX0A", WaitKeyRelease.String())
	assert.Equal(t, "invalid", Invalid.String())
	assert.Equal(t, "unknown", Op(200).String())
}

func TestMnemonic(t *testing.T) {
	tests := []struct {
		op       Op
		expected string
	}{
		{ClearScreen, chip8.ClsName},
		{Return, chip8.RetName},
		{Jump, chip8.JpName},
		{JumpOffset, chip8.JpName},
		{Call, chip8.CallName},
		{SkipEqualByte, chip8.SeName},
		{SkipEqualRegister, chip8.SeName},
		{SkipNotEqualRegister, chip8.SneName},
		{AddIndex, chip8.AddName},
		{SubNegated, chip8.SubnName},
		{ShiftLeft, chip8.ShlName},
		{Random, chip8.RndName},
		{Draw, chip8.DrwName},
		{SkipKeyNotPressed, chip8.SknpName},
		{WaitKeyRelease, chip8.LdName},
		{LoadRegisters, chip8.LdName},
		{Invalid, ""},
		{Op(200), ""},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.op.Mnemonic())
		})
	}

	for _, op := range Ops() {
		assert.NotEmpty(t, op.Mnemonic(), op.String())
	}
}
