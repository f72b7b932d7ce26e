// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package agent

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ExtractJSON returns the contents of the first ```json block in a
// response, or the trimmed response when it has no such block.
func ExtractJSON(text string) string {
	var buf bytes.Buffer
	inBlock, found := false, false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inBlock && trimmed == "```json" {
			inBlock, found = true, true
			continue
		}
		if inBlock && trimmed == "```" {
			break
		}
		if inBlock {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(line)
		}
	}
	if found {
		return strings.TrimSpace(buf.String())
	}

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func parseResult(text string) (*Result, error) {
	content := ExtractJSON(text)
	if content == "" {
		return nil, errors.New("response has no JSON object")
	}
	res := &Result{}
	if err := json.Unmarshal([]byte(content), res); err != nil {
		return nil, errors.Wrap(err, "decoding result JSON")
	}
	if strings.TrimSpace(res.Summary) == "" {
		return nil, errors.New("result has an empty summary")
	}
	// Bookkeeping fields are ours, not the model's
	res.Cost, res.Iterations, res.Model = 0, 0, ""
	return res, nil
}
