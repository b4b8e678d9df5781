// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package protocols

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/sigurn/crc16"
)

// modbusTable is the CRC-16/MODBUS parameterization: polynomial 0xA001
// (reflected 0x8005), initial register 0xFFFF.
var modbusTable = crc16.MakeTable(crc16.CRC16_MODBUS)

var modbusFunctions = map[byte]string{
	1: "Read Coils",
	2: "Read Discrete Inputs",
	3: "Read Holding Registers",
	4: "Read Input Registers",
	5: "Write Single Coil",
	6: "Write Single Register",
}

// CRC16 computes the CRC-16/MODBUS checksum of data.
func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, modbusTable)
}

// DecodeModbusRTU decodes one raw Modbus-RTU frame into a report.
//
// Frame layout: byte 0 slave address, byte 1 function code, trailing two
// bytes CRC-16 little-endian over everything before them. Frames under four
// bytes cannot carry a CRC and are reported as too short.
func DecodeModbusRTU(frame []byte) string {
	if len(frame) < 4 {
		return fmt.Sprintf("[TRAMA MODBUS MUY CORTA: %s]\n", hexBytes(frame))
	}

	address := frame[0]
	function := frame[1]
	payload := frame[2 : len(frame)-2]
	received := binary.LittleEndian.Uint16(frame[len(frame)-2:])
	calculated := CRC16(frame[:len(frame)-2])

	status := "OK"
	if received != calculated {
		status = fmt.Sprintf("ERROR (Calc: %04X)", calculated)
	}

	name, ok := modbusFunctions[function]
	if !ok {
		name = fmt.Sprintf("Desconocido (0x%02X)", function)
	}

	return fmt.Sprintf("--- MODBUS RTU ---\n"+
		"  ID Esclavo:      %d\n"+
		"  Función:         %d (%s)\n"+
		"  Datos (Hex):     %s\n"+
		"  CRC Recibido:    %04X (%s)\n"+
		"---------------------\n",
		address, function, name, hexBytes(payload), received, status)
}

// hexBytes renders bytes as uppercase hex pairs separated by spaces.
func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
