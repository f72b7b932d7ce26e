// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		input       string
		expected    Command
		shouldError bool
	}{
		{"analyze", Analyze, false},
		{"fix", Fix, false},
		{"test", Test, false},
		{"review", Review, false},
		{"/fix", Fix, false},         // Comment form
		{"  Review\n", Review, false}, // Whitespace and case
		{"", "", true},
		{"deploy", "", true},
		{"fixit", "", true},
	} {
		cmd, err := Parse(tc.input)
		if tc.shouldError {
			require.Error(t, err, tc.input)
			require.Contains(t, err.Error(), "analyze, fix, test, review")
			continue
		}
		require.NoError(t, err, tc.input)
		require.Equal(t, tc.expected, cmd)
	}
}

func TestExpectsPatch(t *testing.T) {
	require.True(t, Fix.ExpectsPatch())
	require.True(t, Test.ExpectsPatch())
	require.False(t, Analyze.ExpectsPatch())
	require.False(t, Review.ExpectsPatch())
}
