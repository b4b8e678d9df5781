// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package protocols

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DecodeCANASCII decodes one CAN frame in the SLCAN text form
// t<3-hex-id><1-digit-dlc><2*dlc hex bytes>.
func DecodeCANASCII(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || (line[0] != 't' && line[0] != 'T') {
		return fmt.Sprintf("[NO CAN-ASCII] %s\n", line)
	}
	if len(line) < 5 {
		return fmt.Sprintf("[CAN-ASCII MAL FORMADO] %s\n", line)
	}

	canID, err := strconv.ParseUint(line[1:4], 16, 16)
	if err != nil {
		return fmt.Sprintf("[CAN-ASCII MAL FORMADO] %s\n", line)
	}
	dlc, err := strconv.Atoi(line[4:5])
	if err != nil {
		return fmt.Sprintf("[CAN-ASCII MAL FORMADO] %s\n", line)
	}
	if len(line) < 5+dlc*2 {
		return fmt.Sprintf("[CAN-ASCII MAL FORMADO] %s\n", line)
	}
	data, err := hex.DecodeString(line[5 : 5+dlc*2])
	if err != nil {
		return fmt.Sprintf("[CAN-ASCII MAL FORMADO] %s\n", line)
	}

	return fmt.Sprintf("--- CAN ASCII ---\n"+
		"  ID:            0x%03X\n"+
		"  DLC:           %d\n"+
		"  Datos:         %s\n"+
		"-------------------\n",
		canID, dlc, hexBytes(data))
}
