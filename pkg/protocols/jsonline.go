// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package protocols

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSONLine decodes one line carrying a JSON object and re-serializes
// it indented for readability.
func DecodeJSONLine(line string) string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
		return fmt.Sprintf("[NO JSON] %s\n", line)
	}

	var value interface{}
	if err := json.Unmarshal([]byte(line), &value); err != nil {
		return fmt.Sprintf("[JSON MAL FORMADO] %s\n", line)
	}
	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("[JSON MAL FORMADO] %s\n", line)
	}

	return fmt.Sprintf("--- JSON Object ---\n%s\n-------------------\n", pretty)
}
