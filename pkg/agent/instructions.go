// Copyright (c) 2021-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package agent

import (
	"fmt"

	"github.com/mattermost/agent-resolver/pkg/command"
)

const resultFormat = "Reply with a single JSON object inside a ```json fenced block and nothing else. " +
	"The object has these fields:\n" +
	"- success (boolean): whether the task could be completed\n" +
	"- summary (string, required): one or two sentences describing the outcome\n" +
	"- explanation (string): the reasoning behind the outcome, in markdown\n" +
	"- patch (string): a unified diff against the repository root with a/ and b/ prefixes, or empty\n" +
	"- test_plan (string): how the change should be tested, in markdown\n" +
	"- review_comments (array of strings): one entry per review remark\n"

var commandGoals = map[command.Command]string{
	command.Analyze: "Analyze the problem and explain its likely cause. Do not write a patch.",
	command.Fix:     "Fix the problem. Put the complete change in the patch field.",
	command.Test:    "Write tests that cover the problem. Put the new tests in the patch field and describe them in test_plan.",
	command.Review:  "Review the pull request diff. Put each remark in review_comments. Do not write a patch.",
}

func systemPrompt(cmd command.Command) string {
	return fmt.Sprintf(
		"You are a software engineer working on a GitHub repository through issue and pull request comments.\n%s\n\n%s",
		commandGoals[cmd], resultFormat,
	)
}

func correctionPrompt(err error) string {
	return fmt.Sprintf("Your last reply could not be used: %v.\n\n%s", err, resultFormat)
}
